package command

import "testing"

func TestEditorInsert(t *testing.T) {
	e := newEditor()
	e.Insert('h')
	e.Insert('i')
	if e.Text() != "hi" {
		t.Errorf("expected 'hi', got %q", e.Text())
	}
	if e.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", e.Cursor())
	}

	// insert in the middle
	e.Set("hllo")
	e.cursor = 1
	e.Insert('e')
	if e.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", e.Text())
	}
}

func TestEditorDelete(t *testing.T) {
	e := newEditor()
	e.Set("hello")
	e.DeleteBackward()
	if e.Text() != "hell" {
		t.Errorf("expected 'hell', got %q", e.Text())
	}

	e.Home()
	if e.DeleteBackward() {
		t.Error("DeleteBackward at start should return false")
	}
	e.DeleteForward()
	if e.Text() != "ell" {
		t.Errorf("expected 'ell', got %q", e.Text())
	}
	e.End()
	if e.DeleteForward() {
		t.Error("DeleteForward at end should return false")
	}
}

func TestEditorMovement(t *testing.T) {
	e := newEditor()
	e.Set("hello")

	e.Home()
	if e.Cursor() != 0 {
		t.Errorf("Home: expected cursor at 0, got %d", e.Cursor())
	}
	e.End()
	if e.Cursor() != 5 {
		t.Errorf("End: expected cursor at 5, got %d", e.Cursor())
	}
	e.Left()
	if e.Cursor() != 4 {
		t.Errorf("Left: expected cursor at 4, got %d", e.Cursor())
	}
	e.Right()
	if e.Cursor() != 5 {
		t.Errorf("Right: expected cursor at 5, got %d", e.Cursor())
	}

	if e.Right() {
		t.Error("Right at end should return false")
	}
	e.Home()
	if e.Left() {
		t.Error("Left at start should return false")
	}
}

func TestEditorWordOps(t *testing.T) {
	e := newEditor()
	e.Set("hello world test")

	e.Home()
	e.WordRight()
	if e.Cursor() != 6 {
		t.Errorf("WordRight: expected cursor at 6, got %d", e.Cursor())
	}
	e.WordRight()
	if e.Cursor() != 12 {
		t.Errorf("WordRight: expected cursor at 12, got %d", e.Cursor())
	}
	e.WordLeft()
	if e.Cursor() != 6 {
		t.Errorf("WordLeft: expected cursor at 6, got %d", e.Cursor())
	}

	e.Set("hello world")
	e.DeleteWordBackward()
	if e.Text() != "hello " {
		t.Errorf("expected 'hello ', got %q", e.Text())
	}

	e.Set("hello world")
	e.Home()
	e.DeleteWordForward()
	if e.Text() != "world" {
		t.Errorf("expected 'world', got %q", e.Text())
	}
}

func TestEditorKill(t *testing.T) {
	e := newEditor()
	e.Set("hello world")
	e.cursor = 5
	e.KillToEnd()
	if e.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", e.Text())
	}

	e.Set("hello world")
	e.cursor = 6
	e.KillToStart()
	if e.Text() != "world" {
		t.Errorf("expected 'world', got %q", e.Text())
	}
	if e.Cursor() != 0 {
		t.Errorf("expected cursor at 0, got %d", e.Cursor())
	}
}

func TestEditorTranspose(t *testing.T) {
	e := newEditor()
	e.Set("ab")
	e.Transpose()
	if e.Text() != "ba" {
		t.Errorf("expected 'ba', got %q", e.Text())
	}

	e.Set("abc")
	e.cursor = 2
	e.Transpose()
	if e.Text() != "acb" {
		t.Errorf("expected 'acb', got %q", e.Text())
	}
}

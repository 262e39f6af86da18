package models

import "testing"

func TestModeOther(t *testing.T) {
	if ModePrivate.Other() != ModeWork {
		t.Error("private.Other() != work")
	}
	if ModeWork.Other() != ModePrivate {
		t.Error("work.Other() != private")
	}
	// Unknown values complement to work, matching the private default.
	if Mode("").Other() != ModeWork {
		t.Error("unset mode should complement like private")
	}
}

func TestModeValid(t *testing.T) {
	if !ModePrivate.Valid() || !ModeWork.Valid() {
		t.Error("known modes reported invalid")
	}
	if Mode("guest").Valid() {
		t.Error("unknown mode reported valid")
	}
}

func TestIsFolder(t *testing.T) {
	url := "http://a"
	folder := Node{Title: "f"}
	leaf := Node{Title: "l", URL: &url}

	if !folder.IsFolder() {
		t.Error("node without URL should be a folder")
	}
	if leaf.IsFolder() {
		t.Error("node with URL should not be a folder")
	}
}

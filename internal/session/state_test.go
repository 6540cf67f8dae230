package session

import (
	"errors"
	"testing"

	"studybuddy/internal/models"
)

func TestRemoveFileRemovesExactlyThatFile(t *testing.T) {
	st := NewState("s1")
	st.AddFile(models.UploadedFile{ID: "a"})
	st.AddFile(models.UploadedFile{ID: "b"})
	st.AddFile(models.UploadedFile{ID: "c"})

	removed, ok := st.RemoveFile("b")
	if !ok || removed.ID != "b" {
		t.Fatalf("expected b removed, got %#v ok=%v", removed, ok)
	}
	if len(st.Files) != 2 || st.Files[0].ID != "a" || st.Files[1].ID != "c" {
		t.Fatalf("unexpected files after remove: %#v", st.Files)
	}

	if _, ok := st.RemoveFile("missing"); ok {
		t.Fatalf("removing unknown id should report false")
	}
	if len(st.Files) != 2 {
		t.Fatalf("unknown id changed the collection: %#v", st.Files)
	}
}

func TestActivityLifecycle(t *testing.T) {
	st := NewState("s1")
	st.Begin(FeatureSearch)
	if !st.Loading(FeatureSearch) {
		t.Fatalf("search should be loading")
	}
	if st.Loading(FeatureTimeline) {
		t.Fatalf("timeline should be idle")
	}
	st.Finish(FeatureSearch, errors.New("boom"))
	act := st.Activity[FeatureSearch]
	if act.Loading || act.LastError != "boom" {
		t.Fatalf("unexpected activity after failure: %#v", act)
	}
	st.Begin(FeatureSearch)
	if st.Activity[FeatureSearch].LastError != "" {
		t.Fatalf("begin should clear a previous error")
	}
	st.Finish(FeatureSearch, nil)
	if st.Activity[FeatureSearch] != (Activity{}) {
		t.Fatalf("success should leave the feature idle: %#v", st.Activity[FeatureSearch])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := NewState("s1")
	st.AddFile(models.UploadedFile{ID: "a"})
	st.Search = &models.SearchResult{Text: "t", Sources: []models.Source{{URI: "https://x"}}}
	st.Begin(FeatureExam)

	c := st.Clone()
	c.Files[0].ID = "changed"
	c.Search.Sources[0].URI = "changed"
	c.Finish(FeatureExam, nil)

	if st.Files[0].ID != "a" || st.Search.Sources[0].URI != "https://x" || !st.Loading(FeatureExam) {
		t.Fatalf("clone shares memory with original")
	}
}

package catalog

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLookupDocumentURL(t *testing.T) {
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close()

	if err := cat.AddDocument("Retirement Income Basics", "https://docs.example.com/retirement-income-basics.pdf"); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	url, err := cat.LookupDocumentURL("Retirement Income Basics")
	if err != nil {
		t.Fatalf("LookupDocumentURL() error = %v", err)
	}
	if url != "https://docs.example.com/retirement-income-basics.pdf" {
		t.Errorf("url = %q", url)
	}

	if _, err := cat.LookupDocumentURL("No Such Title"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupDocumentURL(miss) error = %v, want ErrNotFound", err)
	}
}

func TestAddDocumentReplaces(t *testing.T) {
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close()

	if err := cat.AddDocument("Spending in Retirement", "https://docs.example.com/v1.pdf"); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if err := cat.AddDocument("Spending in Retirement", "https://docs.example.com/v2.pdf"); err != nil {
		t.Fatalf("AddDocument() replace error = %v", err)
	}

	url, err := cat.LookupDocumentURL("Spending in Retirement")
	if err != nil {
		t.Fatalf("LookupDocumentURL() error = %v", err)
	}
	if url != "https://docs.example.com/v2.pdf" {
		t.Errorf("url = %q, want updated v2", url)
	}
}

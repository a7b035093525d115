package dataset

import "testing"

func TestJSONLoader_Array(t *testing.T) {
	path := writeFile(t, "data.json", `[{"name":"A"},{"name":"B"}]`)
	got, err := JSONLoader{}.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0]["name"] != "A" {
		t.Errorf("unexpected dataset: %+v", got)
	}
}

func TestJSONLoader_SingleObjectFallback(t *testing.T) {
	path := writeFile(t, "data.json", `{"name":"A"}`)
	got, err := JSONLoader{}.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0]["name"] != "A" {
		t.Errorf("unexpected dataset: %+v", got)
	}
}

func TestJSONLoader_Malformed(t *testing.T) {
	path := writeFile(t, "data.json", `not json`)
	_, err := JSONLoader{}.Load(path)
	if err == nil {
		t.Fatal("expected malformed error")
	}
}

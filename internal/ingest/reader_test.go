package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func basicSource(dir string) Source {
	return Source{
		Entity:    "students",
		Path:      filepath.Join(dir, "*.csv"),
		Delimiter: ";",
		Columns: map[string]string{
			"Matricola": "matricola",
			"Cognome":   "cognome",
			"Nome":      "nome",
		},
	}
}

func TestReadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Matricola;Cognome;Nome;Ignored\n100001;Rossi;Mario;x\n100002;Bianchi;Anna;y\n")

	b, err := ReadFile(basicSource(dir), path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if b.Entity != "students" {
		t.Errorf("Entity = %q, want students", b.Entity)
	}
	if b.SourceFile != path {
		t.Errorf("SourceFile = %q, want %q", b.SourceFile, path)
	}
	if b.ID == "" {
		t.Error("batch ID not minted")
	}
	if len(b.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(b.Records))
	}
	if got := b.Records[0]["matricola"]; got != "100001" {
		t.Errorf("record[0][matricola] = %q, want 100001", got)
	}
	if _, ok := b.Records[0]["Ignored"]; ok {
		t.Error("unmapped column leaked into the record")
	}
	if !b.HasColumn("cognome") || b.HasColumn("Ignored") {
		t.Errorf("Columns = %v, want mapped names only", b.Columns)
	}
	if b.LoadedAt.IsZero() {
		t.Error("LoadedAt not set from file mtime")
	}
}

func TestReadFile_BOMStripped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "\uFEFFMatricola;Cognome;Nome\n100001;Rossi;Mario\n")

	b, err := ReadFile(basicSource(dir), path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !b.HasColumn("matricola") {
		t.Errorf("BOM-prefixed header not mapped; columns = %v", b.Columns)
	}
}

func TestReadFile_EmptyMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", EmptyMarker+"\n")

	_, err := ReadFile(basicSource(dir), path)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("ReadFile() error = %v, want ErrEmptyFile", err)
	}
}

func TestReadFile_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Matricola;Cognome;Nome\n")

	_, err := ReadFile(basicSource(dir), path)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("ReadFile() error = %v, want ErrEmptyFile", err)
	}
}

func TestReadFile_TabDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Matricola\tCognome\tNome\n100001\tRossi\tMario\n")

	src := basicSource(dir)
	src.Delimiter = "tab"
	b, err := ReadFile(src, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := b.Records[0]["cognome"]; got != "Rossi" {
		t.Errorf("record[0][cognome] = %q, want Rossi", got)
	}
}

func TestReadFile_Explode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Titolo,Autori\nPaper One,\"Rossi Mario; Bianchi Anna;Verdi Luca\"\n")

	src := Source{
		Entity:    "pubblicazioni",
		Path:      filepath.Join(dir, "*.csv"),
		Delimiter: ",",
		Columns:   map[string]string{"Titolo": "titolo", "Autori": "autore"},
		Explode:   &ExplodeSpec{Field: "autore", Separator: ";"},
	}
	b, err := ReadFile(src, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(b.Records) != 3 {
		t.Fatalf("records = %d, want 3 (one per author)", len(b.Records))
	}
	want := []string{"Rossi Mario", "Bianchi Anna", "Verdi Luca"}
	for i, w := range want {
		if got := b.Records[i]["autore"]; got != w {
			t.Errorf("record[%d][autore] = %q, want %q", i, got, w)
		}
		if got := b.Records[i]["titolo"]; got != "Paper One" {
			t.Errorf("record[%d][titolo] = %q, want Paper One", i, got)
		}
	}
}

func TestReadFile_ExplodeEmptyFieldKeepsRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Titolo,Autori\nPaper One,\n")

	src := Source{
		Entity:    "pubblicazioni",
		Path:      filepath.Join(dir, "*.csv"),
		Delimiter: ",",
		Columns:   map[string]string{"Titolo": "titolo", "Autori": "autore"},
		Explode:   &ExplodeSpec{Field: "autore"},
	}
	b, err := ReadFile(src, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(b.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(b.Records))
	}
}

func TestReadFile_SkipRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Teacher,Type\nRossi Mario,Lecture\nNessuna collaborazione prevista,\n")

	src := Source{
		Entity:    "dettaglio_corso",
		Path:      filepath.Join(dir, "*.csv"),
		Delimiter: ",",
		Columns:   map[string]string{"Teacher": "docente", "Type": "tipo"},
		SkipRows:  map[string]string{"docente": "Nessuna collaborazione prevista"},
	}
	b, err := ReadFile(src, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(b.Records) != 1 {
		t.Fatalf("records = %d, want 1 after placeholder drop", len(b.Records))
	}
	if got := b.Records[0]["docente"]; got != "Rossi Mario" {
		t.Errorf("record[0][docente] = %q", got)
	}
}

func TestReadFile_PathFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, filepath.Join("cicli", "39", "100001_attivita.csv"),
		"Ore\n12,5\n")

	src := Source{
		Entity:    "attivita_interne",
		Path:      filepath.Join(dir, "cicli", "*", "*_attivita.csv"),
		Delimiter: "tab",
		Columns:   map[string]string{"Ore": "ore"},
		PathFields: map[string]string{
			"matricola": `/(\d+)_`,
			"ciclo":     `/cicli/(\d+)/`,
		},
	}
	b, err := ReadFile(src, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := b.Records[0]["matricola"]; got != "100001" {
		t.Errorf("matricola from path = %q, want 100001", got)
	}
	if got := b.Records[0]["ciclo"]; got != "39" {
		t.Errorf("ciclo from path = %q, want 39", got)
	}
	if !b.HasColumn("matricola") || !b.HasColumn("ciclo") {
		t.Errorf("path fields missing from columns: %v", b.Columns)
	}
}

func TestReadSource_SortedAndSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "Matricola;Cognome;Nome\n100002;Bianchi;Anna\n")
	writeFile(t, dir, "a.csv", "Matricola;Cognome;Nome\n100001;Rossi;Mario\n")
	writeFile(t, dir, "c.csv", EmptyMarker+"\n")

	batches, skipped, err := ReadSource(basicSource(dir))
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	// Sorted path order, not directory order.
	if filepath.Base(batches[0].SourceFile) != "a.csv" {
		t.Errorf("batches[0] = %q, want a.csv first", batches[0].SourceFile)
	}
	if len(skipped) != 1 || filepath.Base(skipped[0]) != "c.csv" {
		t.Errorf("skipped = %v, want [c.csv]", skipped)
	}
}

func TestReadSource_SkipPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01ABC_2024.csv", "Matricola;Cognome;Nome\n100001;Rossi;Mario\n")
	writeFile(t, dir, "dettaglio_corso_01ABC_2024.csv", "Matricola;Cognome;Nome\n100002;Bianchi;Anna\n")

	src := basicSource(dir)
	src.SkipPrefix = "dettaglio_corso_"
	batches, _, err := ReadSource(src)
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	if filepath.Base(batches[0].SourceFile) != "01ABC_2024.csv" {
		t.Errorf("kept %q, want 01ABC_2024.csv", batches[0].SourceFile)
	}
}

func TestFileDigest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "hello\n")

	// sha256 of "hello\n"
	want := "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"
	got, err := FileDigest(path)
	if err != nil {
		t.Fatalf("FileDigest() error = %v", err)
	}
	if got != want {
		t.Errorf("FileDigest() = %s, want %s", got, want)
	}

	other := writeFile(t, dir, "b.csv", "hello\n")
	same, err := FileDigest(other)
	if err != nil {
		t.Fatal(err)
	}
	if same != got {
		t.Error("identical contents must digest identically regardless of path")
	}
}

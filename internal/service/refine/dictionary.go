package refine

import (
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// DictionaryEntry maps one correct surface form to the mis-recognitions the
// speech-to-text model tends to produce for it.
type DictionaryEntry struct {
	Term            string   `yaml:"term"`
	Misrecognitions []string `yaml:"misrecognitions"`
}

// Dictionary is the versioned correction table embedded into refinement
// prompts. The version is stamped on every refined transcription so stale
// refinements can be detected after the table changes.
type Dictionary struct {
	Version string            `yaml:"version"`
	Entries []DictionaryEntry `yaml:"entries"`
}

// DefaultDictionary returns the built-in correction table.
func DefaultDictionary() Dictionary {
	return Dictionary{
		Version: "builtin-v1",
		Entries: []DictionaryEntry{
			{Term: "チームみらい", Misrecognitions: []string{"チーム未来", "チームミライ", "チーム みらい"}},
			{Term: "安野たかひろ", Misrecognitions: []string{"安野貴博", "安野高広", "あんの たかひろ"}},
			{Term: "マニフェスト", Misrecognitions: []string{"マニュフェスト"}},
			{Term: "デジタル民主主義", Misrecognitions: []string{"デジタル民主主議"}},
			{Term: "いどばた政策", Misrecognitions: []string{"井戸端政策", "いどばた製作"}},
		},
	}
}

// LoadDictionary reads a YAML correction table from path and merges it over
// the built-in defaults. A file entry whose term already exists replaces the
// default entry; the file's version, when set, replaces the built-in one.
// An empty path returns the defaults unchanged.
func LoadDictionary(path string) (Dictionary, error) {
	base := DefaultDictionary()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, apperrors.Wrap(err, apperrors.CodeValidation, "failed to read dictionary file: "+path)
	}

	var loaded Dictionary
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Dictionary{}, apperrors.Wrap(err, apperrors.CodeParse, "failed to parse dictionary file: "+path)
	}

	merged := base
	if loaded.Version != "" {
		merged.Version = loaded.Version
	}
	for _, entry := range loaded.Entries {
		if entry.Term == "" {
			continue
		}
		merged.Entries = upsertEntry(merged.Entries, entry)
	}
	return merged, nil
}

func upsertEntry(entries []DictionaryEntry, entry DictionaryEntry) []DictionaryEntry {
	for i, existing := range entries {
		if existing.Term == entry.Term {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

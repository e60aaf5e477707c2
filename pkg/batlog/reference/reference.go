// Package reference reads and writes the species reference set as YAML.
package reference

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/himanishpuri/BatLog/pkg/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid reference data")

type document struct {
	Species []entry `yaml:"species"`
}

type entry struct {
	Genus       string   `yaml:"genus"`
	Species     string   `yaml:"species"`
	CommonNames []string `yaml:"common_names"`
	Tags        []string `yaml:"tags"`
	Notes       string   `yaml:"notes,omitempty"`
}

// Load decodes a reference document. Each species must carry a genus, an
// epithet, a common name and a tag; errors name the offending line.
func Load(r io.Reader) ([]models.Species, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	lines := entryLines(&root)
	out := make([]models.Species, 0, len(doc.Species))
	for i, e := range doc.Species {
		sp := e.toModel()
		if err := validate(sp); err != nil {
			line := 0
			if i < len(lines) {
				line = lines[i]
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalid, line, err)
		}
		out = append(out, sp)
	}
	return out, nil
}

func LoadFile(path string) ([]models.Species, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	species, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return species, nil
}

// Save encodes species in the same layout Load reads.
func Save(w io.Writer, species []models.Species) error {
	doc := document{Species: make([]entry, 0, len(species))}
	for _, sp := range species {
		doc.Species = append(doc.Species, entry{
			Genus:       sp.Genus,
			Species:     sp.Species,
			CommonNames: sp.CommonNames,
			Tags:        sp.Tags,
			Notes:       sp.Notes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding reference: %w", err)
	}
	return enc.Close()
}

func SaveFile(path string, species []models.Species) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, species); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e entry) toModel() models.Species {
	return models.Species{
		Genus:       strings.TrimSpace(e.Genus),
		Species:     strings.TrimSpace(e.Species),
		CommonNames: e.CommonNames,
		Tags:        e.Tags,
		Notes:       e.Notes,
	}
}

func validate(sp models.Species) error {
	switch {
	case sp.Genus == "":
		return errors.New("genus is required")
	case sp.Species == "":
		return errors.New("species is required")
	case !anyNonBlank(sp.CommonNames):
		return fmt.Errorf("%s needs at least one common name", sp.Binomial())
	case !anyNonBlank(sp.Tags):
		return fmt.Errorf("%s needs at least one tag", sp.Binomial())
	}
	return nil
}

func anyNonBlank(list []string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// entryLines returns the source line of each item under the species key.
func entryLines(root *yaml.Node) []int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != "species" {
			continue
		}
		seq := m.Content[i+1]
		lines := make([]int, 0, len(seq.Content))
		for _, item := range seq.Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}

//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/BatLog/pkg/models"
	"gorm.io/gorm"
)

// ValidateSpecies enforces the reference-data rules: a genus, species epithet,
// at least one common name and at least one tag.
func ValidateSpecies(sp models.Species) error {
	switch {
	case strings.TrimSpace(sp.Genus) == "":
		return fmt.Errorf("%w: genus is required", ErrInvalidSpecies)
	case strings.TrimSpace(sp.Species) == "":
		return fmt.Errorf("%w: species epithet is required", ErrInvalidSpecies)
	case len(nonBlank(sp.CommonNames)) == 0:
		return fmt.Errorf("%w: %s needs at least one common name", ErrInvalidSpecies, sp.Binomial())
	case len(nonBlank(sp.Tags)) == 0:
		return fmt.Errorf("%w: %s needs at least one tag", ErrInvalidSpecies, sp.Binomial())
	}
	return nil
}

// InsertSpecies stores a new species with its names and tags and returns its id.
func (c *DBClient) InsertSpecies(sp models.Species) (uint, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	if err := ValidateSpecies(sp); err != nil {
		return 0, err
	}

	bat := toBat(sp)
	bat.ID = 0
	if err := c.DB.Create(&bat).Error; err != nil {
		return 0, fmt.Errorf("creating species %s: %w", sp.Binomial(), err)
	}
	return bat.ID, nil
}

// UpdateSpecies replaces the fields, names and tags of an existing species.
func (c *DBClient) UpdateSpecies(sp models.Species) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := ValidateSpecies(sp); err != nil {
		return err
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		var existing Bat
		if err := tx.First(&existing, sp.ID).Error; err != nil {
			return fmt.Errorf("loading species %d: %w", sp.ID, notFound(err))
		}
		if err := tx.Where("bat_id = ?", sp.ID).Delete(&BatCommonName{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bat_id = ?", sp.ID).Delete(&BatTag{}).Error; err != nil {
			return err
		}

		bat := toBat(sp)
		err := tx.Model(&existing).Updates(map[string]any{
			"genus":   bat.Genus,
			"species": bat.Species,
			"notes":   bat.Notes,
		}).Error
		if err != nil {
			return fmt.Errorf("updating species %d: %w", sp.ID, err)
		}
		if err := tx.Create(&bat.CommonNames).Error; err != nil {
			return fmt.Errorf("saving common names: %w", err)
		}
		if err := tx.Create(&bat.Tags).Error; err != nil {
			return fmt.Errorf("saving tags: %w", err)
		}
		return nil
	})
}

func (c *DBClient) GetSpeciesByID(id uint) (models.Species, error) {
	if err := c.ready(); err != nil {
		return models.Species{}, err
	}
	var bat Bat
	err := c.preloadBat(c.DB).First(&bat, id).Error
	if err != nil {
		return models.Species{}, fmt.Errorf("species %d: %w", id, notFound(err))
	}
	return bat.toModel(), nil
}

// ListSpecies returns all species ordered by genus then epithet.
func (c *DBClient) ListSpecies() ([]models.Species, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var bats []Bat
	if err := c.preloadBat(c.DB).Order("genus, species").Find(&bats).Error; err != nil {
		return nil, fmt.Errorf("listing species: %w", err)
	}
	out := make([]models.Species, 0, len(bats))
	for _, b := range bats {
		out = append(out, b.toModel())
	}
	return out, nil
}

func (c *DBClient) DeleteSpeciesByID(id uint) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bat_id = ?", id).Delete(&BatCommonName{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bat_id = ?", id).Delete(&BatTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Bat{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("species %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// TagSnapshot returns every (tag, species) pair currently stored, in species
// then tag order.
func (c *DBClient) TagSnapshot() ([]models.TagRef, error) {
	species, err := c.ListSpecies()
	if err != nil {
		return nil, err
	}
	return models.Snapshot(species), nil
}

func (c *DBClient) preloadBat(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("CommonNames", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index") })
}

func toBat(sp models.Species) Bat {
	bat := Bat{
		ID:      sp.ID,
		Genus:   strings.TrimSpace(sp.Genus),
		Species: strings.TrimSpace(sp.Species),
		Notes:   sp.Notes,
	}
	for i, n := range nonBlank(sp.CommonNames) {
		bat.CommonNames = append(bat.CommonNames, BatCommonName{BatID: sp.ID, Name: n, SortIndex: i})
	}
	for i, t := range nonBlank(sp.Tags) {
		bat.Tags = append(bat.Tags, BatTag{BatID: sp.ID, Tag: t, SortIndex: i})
	}
	return bat
}

func (b Bat) toModel() models.Species {
	sp := models.Species{ID: b.ID, Genus: b.Genus, Species: b.Species, Notes: b.Notes}
	for _, n := range b.CommonNames {
		sp.CommonNames = append(sp.CommonNames, n.Name)
	}
	for _, t := range b.Tags {
		sp.Tags = append(sp.Tags, t.Tag)
	}
	return sp
}

// nonBlank trims entries and drops empty ones. Tags keep inner spacing.
func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
)

// Seed is the YAML layout of a catalog bootstrap file.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
	Reasons    []SeedReason   `yaml:"reasons"`
}

// SeedCategory is a category and the rewards filed under it.
type SeedCategory struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Img         string       `yaml:"img"`
	Rewards     []SeedReward `yaml:"rewards"`
}

// SeedReward is a redeemable reward.
type SeedReward struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Points      int64  `yaml:"points"`
}

// SeedReason is a predefined recognition reason.
type SeedReason struct {
	Reason      string `yaml:"reason"`
	Description string `yaml:"description"`
	Img         string `yaml:"img"`
}

// LoadSeedFile reads and validates a catalog seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a catalog seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	for i, c := range seed.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d: name is required", i)
		}
		for j, r := range c.Rewards {
			if strings.TrimSpace(r.Title) == "" {
				return nil, fmt.Errorf("category %q reward %d: title is required", c.Name, j)
			}
			if r.Points <= 0 {
				return nil, fmt.Errorf("category %q reward %q: points must be positive", c.Name, r.Title)
			}
		}
	}
	for i, r := range seed.Reasons {
		if strings.TrimSpace(r.Reason) == "" {
			return nil, fmt.Errorf("reason %d: reason is required", i)
		}
	}

	return &seed, nil
}

// ApplySeed creates the seeded categories with their rewards, skipping any
// category whose name already exists. Reasons are only seeded into an empty
// reason list. It returns the number of rows created.
func (s *Service) ApplySeed(ctx context.Context, seed *Seed) (int, error) {
	created := 0

	for _, sc := range seed.Categories {
		_, err := s.repo.GetCategoryByName(ctx, sc.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("failed to look up category %q: %w", sc.Name, err)
		}

		category := &models.RewardCategory{CategoryName: sc.Name, Description: sc.Description, Img: optional(sc.Img)}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			return created, err
		}
		created++

		for _, sr := range sc.Rewards {
			reward := &models.Reward{
				Title:          sr.Title,
				Description:    sr.Description,
				PointsRequired: sr.Points,
				CategoryID:     &category.ID,
			}
			if err := s.repo.CreateReward(ctx, reward); err != nil {
				return created, err
			}
			created++
		}
	}

	reasons, err := s.repo.ListReasons(ctx)
	if err != nil {
		return created, err
	}
	if len(reasons) == 0 {
		for _, sr := range seed.Reasons {
			reason := &models.RewardReason{Reason: sr.Reason, Description: sr.Description, Img: optional(sr.Img)}
			if err := s.repo.CreateReason(ctx, reason); err != nil {
				return created, err
			}
			created++
		}
	}

	if created > 0 {
		s.Invalidate(ctx)
		s.log.Info().Int("rows", created).Msg("Catalog seeded")
	}
	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

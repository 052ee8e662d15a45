package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cmms_backend/internal/inventory/repository"
	"cmms_backend/platform/apperr"
)

// PartLine is one consumption line of a parts payload. Lines reference an
// item by exact code or, failing that, by part of its name.
type PartLine struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ParsePartLines decodes a parts payload into consumption lines.
func ParsePartLines(payload string) ([]PartLine, error) {
	var lines []PartLine
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		return nil, apperr.Validation("invalid parts payload, expected a JSON array of {code|name, quantity}")
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("parts payload is empty")
	}
	return lines, nil
}

// resolution is the tagged outcome of matching one line to an item.
type resolution struct {
	item   repository.Item
	found  bool
	reason string
}

func (l PartLine) label() string {
	if code := strings.TrimSpace(l.Code); code != "" {
		return code
	}
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	return "<unnamed>"
}

// resolve matches a line to an active item: exact code first, then name
// containment with the earliest registered item winning.
func (s *Service) resolve(ctx context.Context, line PartLine) (resolution, error) {
	if code := strings.TrimSpace(line.Code); code != "" {
		item, err := s.repo.FindItemByCode(ctx, code)
		if err == nil {
			return resolution{item: item, found: true}, nil
		}
		if apperr.GetKind(err) != apperr.KindNotFound {
			return resolution{}, err
		}
	}

	if name := strings.TrimSpace(line.Name); name != "" {
		item, err := s.repo.FindItemByNameLike(ctx, name)
		if err == nil {
			return resolution{item: item, found: true}, nil
		}
		if apperr.GetKind(err) != apperr.KindNotFound {
			return resolution{}, err
		}
	}

	return resolution{reason: fmt.Sprintf("item %q not found", line.label())}, nil
}

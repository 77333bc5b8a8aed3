package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/google/uuid"
)

type SchoolRepository struct {
	db store.Gateway
}

func NewSchoolRepository(db store.Gateway) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Create создаёт школу
func (r *SchoolRepository) Create(ctx context.Context, school *model.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}

	fields, err := toFields(school)
	if err != nil {
		return fmt.Errorf("create school: %w", err)
	}

	if err := r.db.Create(ctx, store.CollectionSchools, school.ID, fields); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// GetByID получает школу по ID
func (r *SchoolRepository) GetByID(ctx context.Context, id string) (*model.School, error) {
	doc, err := r.db.Get(ctx, store.CollectionSchools, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school by id: %w", err)
	}
	return decodeSchool(doc)
}

// GetAll получает все школы, отсортированные по названию
func (r *SchoolRepository) GetAll(ctx context.Context) ([]*model.School, error) {
	docs, err := r.db.Query(ctx, store.CollectionSchools)
	if err != nil {
		return nil, fmt.Errorf("get schools: %w", err)
	}

	schools := make([]*model.School, 0, len(docs))
	for _, doc := range docs {
		s, err := decodeSchool(doc)
		if err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	sort.SliceStable(schools, func(i, j int) bool {
		if schools[i].Name != schools[j].Name {
			return schools[i].Name < schools[j].Name
		}
		return schools[i].ID < schools[j].ID
	})
	return schools, nil
}

func decodeSchool(doc store.Document) (*model.School, error) {
	var s model.School
	if err := fromDoc(doc, &s); err != nil {
		return nil, fmt.Errorf("scan school: %w", err)
	}
	s.ID = doc.ID
	return &s, nil
}

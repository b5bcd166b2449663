package loam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/loam"
	"github.com/dredimura/surface/pkg/domain"
)

// Library adapts a Loam repository of preset documents to ports.PresetSource.
type Library struct {
	Repo *loam.TypedRepository[PresetMetadata]
}

// New creates a Library over repo.
func New(repo *loam.TypedRepository[PresetMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PresetMetadata](repo)), nil
}

// List returns every preset ordered by group, then id.
func (l *Library) List(ctx context.Context) ([]domain.Preset, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	presets := make([]domain.Preset, 0, len(docs))
	for _, doc := range docs {
		// List answers from the index, which carries no body.
		content := doc.Content
		if doc.Data.Description == "" && content == "" {
			full, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load preset %s: %w", doc.ID, err)
			}
			content = full.Content
		}
		p, err := toPreset(doc.ID, doc.Data, content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("collision detected: preset '%s' is defined in both '%s' and '%s'", p.ID, existing, doc.ID)
		}
		seen[p.ID] = doc.ID
		presets = append(presets, p)
	}

	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Group != presets[j].Group {
			return presets[i].Group < presets[j].Group
		}
		return presets[i].ID < presets[j].ID
	})
	return presets, nil
}

// Get loads one preset by id. The id may omit the file extension.
func (l *Library) Get(ctx context.Context, id string) (domain.Preset, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		// Ids declared in frontmatter need not match a file name.
		presets, listErr := l.List(ctx)
		if listErr != nil {
			return domain.Preset{}, fmt.Errorf("loam get failed for %s: %w", id, errors.Join(err, listErr))
		}
		for _, p := range presets {
			if p.ID == id {
				return p, nil
			}
		}
		return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, id)
	}
	return toPreset(doc.ID, doc.Data, doc.Content)
}

// Watch emits the id of every changed preset document until ctx is done.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func toPreset(docID string, meta PresetMetadata, content string) (domain.Preset, error) {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	id := trimExtension(rawID)

	p := domain.Preset{
		ID:          id,
		Name:        meta.Name,
		Group:       meta.Group,
		Description: meta.Description,
		Updates:     make([]domain.BatchUpdate, 0, len(meta.Parameters)),
	}
	if p.Name == "" {
		p.Name = id
	}
	if p.Description == "" {
		p.Description = strings.TrimSpace(content)
	}

	for i, param := range meta.Parameters {
		if param.ID == "" {
			return domain.Preset{}, fmt.Errorf("preset %s: parameter %d has no id", id, i)
		}
		v, err := toFloat(param.Value)
		if err != nil {
			return domain.Preset{}, fmt.Errorf("preset %s: parameter %s: %w", id, param.ID, err)
		}
		if v < 0 || v > 1 {
			return domain.Preset{}, fmt.Errorf("preset %s: parameter %s: value %v outside [0,1]", id, param.ID, v)
		}
		p.Updates = append(p.Updates, domain.BatchUpdate{ID: domain.ParameterID(param.ID), Value: v})
	}
	return p, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("unsupported value type %T", v)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

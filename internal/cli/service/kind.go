package service

import (
	"encoding/json"

	"JackTrack/internal/cli/model"
)

// Kind описывает вид сущности: таблицу, REST-коллекцию и отличия в поведении.
type Kind[T model.Entity] struct {
	Name     string // tree, flower, ...
	Resource string // имя REST-коллекции
	// SoftDelete — удаление ставит deleted_at; иначе строка удаляется физически.
	SoftDelete bool
	// ParentColumn — колонка для ListByParent.
	ParentColumn string
	// Mutable — колонки, которые разрешено менять через Update.
	Mutable []string
	// ImageColumn и Image — поле ссылки на снимок; пустые, если у вида нет изображений.
	ImageColumn string
	Image       func(T) *string

	New func() T
}

func (k Kind[T]) mutable(col string) bool {
	for _, c := range k.Mutable {
		if c == col {
			return true
		}
	}
	return false
}

// TreeKind — деревья: без мягкого удаления.
func TreeKind() Kind[*model.Tree] {
	return Kind[*model.Tree]{
		Name:        model.KindTree,
		Resource:    "trees",
		Mutable:     []string{"description", "type", "latitude", "longitude", "status", "image_path"},
		ImageColumn: "image_path",
		Image:       func(t *model.Tree) *string { return &t.ImagePath },
		New:         func() *model.Tree { return &model.Tree{} },
	}
}

// FlowerKind — цветения дерева (tree_id), мягкое удаление.
func FlowerKind() Kind[*model.Flower] {
	return Kind[*model.Flower]{
		Name:         model.KindFlower,
		Resource:     "flowers",
		SoftDelete:   true,
		ParentColumn: "tree_id",
		Mutable:      []string{"quantity", "wrapped_at", "image_url"},
		ImageColumn:  "image_url",
		Image:        func(f *model.Flower) *string { return &f.ImageURL },
		New:          func() *model.Flower { return &model.Flower{} },
	}
}

// FruitKind — плоды цветения (flower_id), мягкое удаление.
func FruitKind() Kind[*model.Fruit] {
	return Kind[*model.Fruit]{
		Name:         model.KindFruit,
		Resource:     "fruits",
		SoftDelete:   true,
		ParentColumn: "flower_id",
		Mutable:      []string{"quantity", "bagged_at", "image_uri"},
		ImageColumn:  "image_uri",
		Image:        func(f *model.Fruit) *string { return &f.ImageURI },
		New:          func() *model.Fruit { return &model.Fruit{} },
	}
}

// UserKind — пользователи; email уникален.
func UserKind() Kind[*model.User] {
	return Kind[*model.User]{
		Name:     model.KindUser,
		Resource: "users",
		Mutable:  []string{"first_name", "last_name", "email", "gender"},
		New:      func() *model.User { return &model.User{} },
	}
}

// payload сериализует запись для сервера: ссылка на снимок заменяется удалённым URL
// (или null), нулевые времена передаются как null, is_synced всегда true.
func (k Kind[T]) payload(rec T, imageURL string) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["is_synced"] = true
	meta := rec.Base()
	if meta.CreatedAt.IsZero() {
		m["created_at"] = nil
	}
	if meta.UpdatedAt.IsZero() {
		m["updated_at"] = nil
	}
	if k.ImageColumn != "" {
		if imageURL == "" {
			m[k.ImageColumn] = nil
		} else {
			m[k.ImageColumn] = imageURL
		}
	}
	return m, nil
}

// decode разбирает запись из ответа сервера.
func (k Kind[T]) decode(raw json.RawMessage) (T, error) {
	rec := k.New()
	err := json.Unmarshal(raw, rec)
	return rec, err
}

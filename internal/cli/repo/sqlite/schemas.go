package sqlite

import "JackTrack/internal/cli/model"

// TreeSchema — таблица trees.
func TreeSchema() Schema[*model.Tree] {
	return Schema[*model.Tree]{
		Name:           "trees",
		Columns:        []string{"description", "type", "latitude", "longitude", "status", "image_path"},
		CategoryColumn: "status",
		OrderBy:        "created_at DESC",
		New:            func() *model.Tree { return &model.Tree{} },
		Values: func(t *model.Tree) []any {
			return []any{t.Description, t.Type, t.Latitude, t.Longitude, t.Status, t.ImagePath}
		},
		Targets: func(t *model.Tree) []any {
			return []any{&t.Description, &t.Type, &t.Latitude, &t.Longitude, &t.Status, &t.ImagePath}
		},
	}
}

// FlowerSchema — таблица flowers, мягкое удаление.
func FlowerSchema() Schema[*model.Flower] {
	return Schema[*model.Flower]{
		Name:           "flowers",
		Columns:        []string{"tree_id", "quantity", "wrapped_at", "image_url"},
		SoftDelete:     true,
		ParentColumns:  []string{"tree_id"},
		QuantityColumn: "quantity",
		OrderBy:        "wrapped_at DESC, created_at DESC",
		New:            func() *model.Flower { return &model.Flower{} },
		Values: func(f *model.Flower) []any {
			return []any{f.TreeID, f.Quantity, f.WrappedAt, f.ImageURL}
		},
		Targets: func(f *model.Flower) []any {
			return []any{&f.TreeID, &f.Quantity, microTime{&f.WrappedAt}, &f.ImageURL}
		},
	}
}

// FruitSchema — таблица fruits, мягкое удаление.
func FruitSchema() Schema[*model.Fruit] {
	return Schema[*model.Fruit]{
		Name:           "fruits",
		Columns:        []string{"flower_id", "tree_id", "quantity", "bagged_at", "image_uri"},
		SoftDelete:     true,
		ParentColumns:  []string{"flower_id", "tree_id"},
		QuantityColumn: "quantity",
		OrderBy:        "bagged_at DESC, created_at DESC",
		New:            func() *model.Fruit { return &model.Fruit{} },
		Values: func(f *model.Fruit) []any {
			return []any{f.FlowerID, f.TreeID, f.Quantity, f.BaggedAt, f.ImageURI}
		},
		Targets: func(f *model.Fruit) []any {
			return []any{&f.FlowerID, &f.TreeID, &f.Quantity, microTime{&f.BaggedAt}, &f.ImageURI}
		},
	}
}

// UserSchema — таблица users; email уникален.
func UserSchema() Schema[*model.User] {
	return Schema[*model.User]{
		Name:           "users",
		Columns:        []string{"first_name", "last_name", "email", "gender"},
		CategoryColumn: "gender",
		OrderBy:        "last_name, first_name",
		New:            func() *model.User { return &model.User{} },
		Values: func(u *model.User) []any {
			return []any{u.FirstName, u.LastName, u.Email, u.Gender}
		},
		Targets: func(u *model.User) []any {
			return []any{&u.FirstName, &u.LastName, &u.Email, &u.Gender}
		},
	}
}

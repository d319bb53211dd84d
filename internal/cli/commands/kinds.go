package commands

import (
	"flag"
	"fmt"
	"io"

	"JackTrack/internal/cli/bootstrap"
	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/service"
)

func treeCmd() Command {
	return entityCmd[*model.Tree]{
		kind:     model.KindTree,
		desc:     "Деревья: учёт, координаты и фото",
		addUsage: "--desc <text> [--type <variety>] [--lat <deg> --lng <deg>] [--status active|inactive] [--photo <path>]",
		svc:      func(a *bootstrap.App) *service.EntityService[*model.Tree] { return a.Trees },
		build: func(args []string) (*model.Tree, string, error) {
			fs := flag.NewFlagSet("tree add", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			t := &model.Tree{}
			fs.StringVar(&t.Description, "desc", "", "description")
			fs.StringVar(&t.Type, "type", "", "variety")
			fs.Float64Var(&t.Latitude, "lat", 0, "latitude")
			fs.Float64Var(&t.Longitude, "lng", 0, "longitude")
			fs.StringVar(&t.Status, "status", model.TreeActive, "active|inactive")
			photo := fs.String("photo", "", "path to a photo")
			if err := fs.Parse(args); err != nil {
				return nil, "", ErrUsage
			}
			return t, *photo, nil
		},
		line: func(t *model.Tree) string {
			return fmt.Sprintf("%s  %-8s %-12s %.5f,%.5f  %s", t.ID, t.Status, t.Type, t.Latitude, t.Longitude, t.Description)
		},
	}
}

func flowerCmd() Command {
	return entityCmd[*model.Flower]{
		kind:     model.KindFlower,
		desc:     "Обёрнутые соцветия на дереве",
		addUsage: "--tree <id> --qty <n> [--date YYYY-MM-DD] [--photo <path>]",
		svc:      func(a *bootstrap.App) *service.EntityService[*model.Flower] { return a.Flowers },
		build: func(args []string) (*model.Flower, string, error) {
			fs := flag.NewFlagSet("flower add", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			f := &model.Flower{}
			fs.StringVar(&f.TreeID, "tree", "", "tree id")
			fs.IntVar(&f.Quantity, "qty", 0, "number of wrapped flowers")
			date := fs.String("date", "", "wrapping date, YYYY-MM-DD (today by default)")
			photo := fs.String("photo", "", "path to a photo")
			if err := fs.Parse(args); err != nil {
				return nil, "", ErrUsage
			}
			at, err := parseDate(*date)
			if err != nil {
				return nil, "", err
			}
			f.WrappedAt = at
			return f, *photo, nil
		},
		line: func(f *model.Flower) string {
			return fmt.Sprintf("%s  tree=%s  qty=%d  wrapped=%s", f.ID, f.TreeID, f.Quantity, f.WrappedAt.Format(dateLayout))
		},
		filters: []string{"tree_id"},
	}
}

func fruitCmd() Command {
	return entityCmd[*model.Fruit]{
		kind:     model.KindFruit,
		desc:     "Плоды в пакетах",
		addUsage: "--flower <id> --tree <id> --qty <n> [--date YYYY-MM-DD] [--photo <path>]",
		svc:      func(a *bootstrap.App) *service.EntityService[*model.Fruit] { return a.Fruits },
		build: func(args []string) (*model.Fruit, string, error) {
			fs := flag.NewFlagSet("fruit add", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			f := &model.Fruit{}
			fs.StringVar(&f.FlowerID, "flower", "", "flower id")
			fs.StringVar(&f.TreeID, "tree", "", "tree id")
			fs.IntVar(&f.Quantity, "qty", 0, "number of bagged fruits")
			date := fs.String("date", "", "bagging date, YYYY-MM-DD (today by default)")
			photo := fs.String("photo", "", "path to a photo")
			if err := fs.Parse(args); err != nil {
				return nil, "", ErrUsage
			}
			at, err := parseDate(*date)
			if err != nil {
				return nil, "", err
			}
			f.BaggedAt = at
			return f, *photo, nil
		},
		line: func(f *model.Fruit) string {
			return fmt.Sprintf("%s  flower=%s  tree=%s  qty=%d  bagged=%s", f.ID, f.FlowerID, f.TreeID, f.Quantity, f.BaggedAt.Format(dateLayout))
		},
		filters: []string{"flower_id", "tree_id"},
	}
}

func userCmd() Command {
	return entityCmd[*model.User]{
		kind:     model.KindUser,
		desc:     "Полевые сотрудники",
		addUsage: "--first <name> --last <name> --email <addr> [--gender <g>]",
		svc:      func(a *bootstrap.App) *service.EntityService[*model.User] { return a.Users },
		build: func(args []string) (*model.User, string, error) {
			fs := flag.NewFlagSet("user add", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			u := &model.User{}
			fs.StringVar(&u.FirstName, "first", "", "first name")
			fs.StringVar(&u.LastName, "last", "", "last name")
			fs.StringVar(&u.Email, "email", "", "email")
			fs.StringVar(&u.Gender, "gender", "", "gender")
			if err := fs.Parse(args); err != nil {
				return nil, "", ErrUsage
			}
			return u, "", nil
		},
		line: func(u *model.User) string {
			return fmt.Sprintf("%s  %s %s <%s>", u.ID, u.FirstName, u.LastName, u.Email)
		},
	}
}

func init() {
	RegisterCmd(treeCmd())
	RegisterCmd(flowerCmd())
	RegisterCmd(fruitCmd())
	RegisterCmd(userCmd())
}

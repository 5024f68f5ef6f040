package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turbolytics/formsync/internal"
)

// FormFixture is a form to create in a form service, fields in position order.
type FormFixture struct {
	ID     string               `yaml:"id"`
	Fields []internal.FieldSpec `yaml:"fields"`
}

type fixtureFile struct {
	Forms []FormFixture `yaml:"forms"`
}

func LoadFormFixtures(fpath string) ([]FormFixture, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var f fixtureFile
	if err := yaml.Unmarshal(bs, &f); err != nil {
		return nil, err
	}

	for i, form := range f.Forms {
		if form.ID == "" {
			return nil, fmt.Errorf("%s: form %d has no id", fpath, i)
		}
		for j := range form.Fields {
			if form.Fields[j].Kind == "" {
				form.Fields[j].Kind = internal.FieldKindList
			}
		}
	}
	return f.Forms, nil
}

func SeedForms(ctx context.Context, seeder FormSeeder, fixtures []FormFixture) error {
	for _, form := range fixtures {
		if err := seeder.PutForm(ctx, form.ID, form.Fields...); err != nil {
			return fmt.Errorf("seeding form %q: %w", form.ID, err)
		}
	}
	return nil
}

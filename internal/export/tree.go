package export

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
	"github.com/thoreinstein/ccdir/pkg/frontmatter"
)

const filePerm = 0o644

type categoriesFile struct {
	Categories []resource.Category `yaml:"categories"`
}

// WriteTree writes b under dir in the content tree layout: categories.yaml
// plus one markdown file per record. The body of each file is the record's
// long text and is left out of its frontmatter.
func WriteTree(dir string, b *Bundle) error {
	cats := make([]resource.Category, len(b.Categories))
	for i, c := range b.Categories {
		c.ResourceCount = 0
		cats[i] = c
	}
	data, err := yaml.Marshal(categoriesFile{Categories: cats})
	if err != nil {
		return errors.Wrap(err, "marshaling categories")
	}
	if err := fileutil.WriteFileMkdir(filepath.Join(dir, resource.CategoriesFile), data, filePerm); err != nil {
		return errors.Wrap(err, "writing categories")
	}

	for _, c := range b.Configs {
		body := c.Content
		c.Content = ""
		if err := writeRecord(dir, resource.TypeClaudeMd, c.Slug, c, body); err != nil {
			return err
		}
	}
	for _, p := range b.Prompts {
		body := p.Prompt
		p.Prompt = ""
		if err := writeRecord(dir, resource.TypePrompt, p.Slug, p, body); err != nil {
			return err
		}
	}
	for _, t := range b.Tools {
		body := t.Description
		t.Description = ""
		if err := writeRecord(dir, resource.TypeTool, t.Slug, t, body); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(dir string, t resource.ResourceType, slug string, matter any, body string) error {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return errors.Newf("%s slug %q cannot be used as a file name", t.Label(), slug)
	}
	data, err := frontmatter.Format(matter, body)
	if err != nil {
		return errors.Wrapf(err, "formatting %s %s", t.Label(), slug)
	}
	path := filepath.Join(dir, resource.Dir(t), slug+".md")
	if err := fileutil.WriteFileMkdir(path, data, filePerm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

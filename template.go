package phttp

import (
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// templateSet lazily loads templates through the application's resource
// loader, caching each parsed template after first use.
type templateSet struct {
	loader ResourceLoader

	mu    sync.Mutex
	cache map[string]*template.Template
}

func newTemplateSet(loader ResourceLoader) *templateSet {
	return &templateSet{loader: loader, cache: map[string]*template.Template{}}
}

func (s *templateSet) load(name string) (*template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}

	if s.loader == nil {
		return nil, errors.New("phttp: no resource loader configured")
	}

	f, err := s.loader.Open("templates/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "open template %q", name)
	}
	defer f.Close()

	var src strings.Builder
	if _, err := io.Copy(&src, f); err != nil {
		return nil, errors.Wrapf(err, "read template %q", name)
	}

	tmpl, err := template.New(name).Parse(src.String())
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %q", name)
	}

	s.cache[name] = tmpl

	return tmpl, nil
}

// RenderTemplate executes the named template from the loader's templates/
// directory into w. The caller emits the response head itself, typically via
// [StartResponse].
func (a *App) RenderTemplate(w io.Writer, name string, data any) error {
	tmpl, err := a.templates.load(name)
	if err != nil {
		return err
	}

	return errors.Wrapf(tmpl.Execute(w, data), "execute template %q", name)
}

// RenderString renders the named template to a string.
func (a *App) RenderString(name string, data any) (string, error) {
	tmpl, err := a.templates.load(name)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", errors.Wrapf(err, "execute template %q", name)
	}

	return out.String(), nil
}

// Package refdata holds the process-wide reference tables: country
// name/code mapping, issuing-city to country mapping, and the known
// birth-place set. Tables are loaded once, lazily, and are immutable for
// the lifetime of the process; callers share them read-only.
package refdata

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	countriesFile   = "countries.yaml"
	citiesFile      = "cities.yaml"
	birthPlacesFile = "birth_places.yaml"
)

// Tables bundles the three reference lookups. All maps are read-only after
// construction.
type Tables struct {
	nameToCode  map[string]string   // Title-case display name -> 3-letter code
	codeToName  map[string]string   // 3-letter code -> display name
	cityCountry map[string]string   // uppercase city -> uppercase country name
	birthPlaces map[string]struct{} // uppercase canonical birth places
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the process-wide tables backed by the embedded data files.
// The first call performs the load; subsequent calls return the same
// instance. The load is guarded so concurrent first access is safe.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = load(func(name string) ([]byte, error) {
			return embedded.ReadFile("data/" + name)
		})
	})
	return defaultTables, defaultErr
}

// LoadDir builds tables from YAML files in dir, falling back to the embedded
// copy for any file that is absent. Used when deployments ship their own
// reference data.
func LoadDir(dir string) (*Tables, error) {
	return load(func(name string) ([]byte, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return b, nil
		}
		if os.IsNotExist(err) {
			return embedded.ReadFile("data/" + name)
		}
		return nil, err
	})
}

func load(read func(name string) ([]byte, error)) (*Tables, error) {
	t := &Tables{
		nameToCode:  make(map[string]string),
		codeToName:  make(map[string]string),
		cityCountry: make(map[string]string),
		birthPlaces: make(map[string]struct{}),
	}

	b, err := read(countriesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", countriesFile, err)
	}
	var countries map[string]string
	if err := yaml.Unmarshal(b, &countries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", countriesFile, err)
	}
	for name, code := range countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		name = strings.TrimSpace(name)
		if name == "" || len(code) != 3 {
			return nil, fmt.Errorf("parse %s: bad entry %q -> %q", countriesFile, name, code)
		}
		t.nameToCode[name] = code
		t.codeToName[code] = name
	}

	b, err = read(citiesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", citiesFile, err)
	}
	var cities map[string]string
	if err := yaml.Unmarshal(b, &cities); err != nil {
		return nil, fmt.Errorf("parse %s: %w", citiesFile, err)
	}
	for city, country := range cities {
		t.cityCountry[strings.ToUpper(strings.TrimSpace(city))] = strings.ToUpper(strings.TrimSpace(country))
	}

	b, err = read(birthPlacesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", birthPlacesFile, err)
	}
	var places []string
	if err := yaml.Unmarshal(b, &places); err != nil {
		return nil, fmt.Errorf("parse %s: %w", birthPlacesFile, err)
	}
	for _, p := range places {
		t.birthPlaces[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
	}

	return t, nil
}

// IsCode reports whether code is a known 3-letter country code.
func (t *Tables) IsCode(code string) bool {
	_, ok := t.codeToName[strings.ToUpper(code)]
	return ok
}

// CodeForName looks up the 3-letter code for a country display name. The
// name is title-cased before lookup so OCR'd "KENYA" or "kenya" both hit.
func (t *Tables) CodeForName(name string) (string, bool) {
	code, ok := t.nameToCode[titleCase(name)]
	return code, ok
}

// NameForCode returns the display name for a 3-letter code.
func (t *Tables) NameForCode(code string) (string, bool) {
	name, ok := t.codeToName[strings.ToUpper(code)]
	return name, ok
}

// CityCountries returns the city -> country mapping. The returned map is
// shared and must not be mutated.
func (t *Tables) CityCountries() map[string]string {
	return t.cityCountry
}

// IsKnownBirthPlace reports whether place matches the canonical set exactly
// (uppercase comparison).
func (t *Tables) IsKnownBirthPlace(place string) bool {
	_, ok := t.birthPlaces[strings.ToUpper(strings.TrimSpace(place))]
	return ok
}

// CountryNames returns every known display name. The slice is freshly
// allocated per call.
func (t *Tables) CountryNames() []string {
	names := make([]string, 0, len(t.nameToCode))
	for name := range t.nameToCode {
		names = append(names, name)
	}
	return names
}

// titleCase matches the lookup normalization used when the tables were
// built: each space-separated word capitalized, short connectives kept
// lowercase is not needed because table keys avoid them.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

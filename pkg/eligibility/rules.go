package eligibility

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Service ids the engine and the flow reference by name.
const (
	ServiceStandard    = "standard"
	ServiceRush        = "rush"
	ServicePaymentPlan = "payment_plan"
	ServiceDiscovery   = "discovery"
	ServiceIntake      = "intake"
)

// Rules is the static configuration injected into the engine: statutory wait
// periods for the target jurisdiction plus the host's name/category table.
//
// Wait constants are pointers so that an absent constant can be told apart
// from a legitimate zero.
type Rules struct {
	Jurisdiction      domain.Jurisdiction `yaml:"jurisdiction" json:"jurisdiction"`
	WaitPeriods       WaitPeriods         `yaml:"wait_periods" json:"wait_periods"`
	Jurisdictions     []Category          `yaml:"jurisdictions" json:"jurisdictions"`
	OffenseCategories []Category          `yaml:"offense_categories" json:"offense_categories"`
	Services          []Service           `yaml:"services" json:"services"`
}

type WaitPeriods struct {
	Unfiled                   UnfiledWaits   `yaml:"unfiled" json:"unfiled"`
	Dismissed                 DismissedWaits `yaml:"dismissed" json:"dismissed"`
	Deferred                  DeferredWaits  `yaml:"deferred" json:"deferred"`
	ConvictedMisdemeanorYears *int           `yaml:"convicted_misdemeanor_years" json:"convicted_misdemeanor_years"`
}

type UnfiledWaits struct {
	ClassCDays       *int `yaml:"class_c_days" json:"class_c_days"`
	MisdemeanorYears *int `yaml:"misdemeanor_years" json:"misdemeanor_years"`
	FelonyYears      *int `yaml:"felony_years" json:"felony_years"`
}

type DismissedWaits struct {
	MisdemeanorYears     *int `yaml:"misdemeanor_years" json:"misdemeanor_years"`
	FelonyStandardYears  *int `yaml:"felony_standard_years" json:"felony_standard_years"`
	FelonyFraudYears     *int `yaml:"felony_fraud_years" json:"felony_fraud_years"`
	FelonyDeedTheftYears *int `yaml:"felony_deed_theft_years" json:"felony_deed_theft_years"`
}

type DeferredWaits struct {
	FelonyYears                     *int `yaml:"felony_years" json:"felony_years"`
	MisdemeanorYears                *int `yaml:"misdemeanor_years" json:"misdemeanor_years"`
	MisdemeanorMinorNonviolentYears *int `yaml:"misdemeanor_minor_nonviolent_years" json:"misdemeanor_minor_nonviolent_years"`
}

// Category is an id/label pair from the catalog.
type Category struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Service is a purchasable offering. A zero Price means no fixed fee.
type Service struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Price int    `yaml:"price,omitempty" json:"price,omitempty"`
	URL   string `yaml:"url" json:"url"`
}

// PriceLabel renders the price the way prompts show it ("$1,395").
func (s Service) PriceLabel() string {
	if s.Price == 0 {
		return ""
	}
	return "$" + humanize.Comma(int64(s.Price))
}

// DefaultRules returns a fresh copy of the embedded Texas rules.
func DefaultRules() *Rules {
	r, err := ParseRules(defaultRules, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return r
}

// LoadRules reads rules from path. Files ending in .json are decoded as
// JSON, anything else as YAML. The result is validated.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules %s: %w", path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return ParseRules(data, format)
}

// ParseRules decodes and validates rules in the given format ("yaml" or "json").
func ParseRules(data []byte, format string) (*Rules, error) {
	var r Rules
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate reports the first absent or negative statutory constant, or a
// missing service the engine quotes, as a *domain.ConfigurationError.
func (r *Rules) Validate() error {
	if r.Jurisdiction == "" {
		return &domain.ConfigurationError{Detail: "jurisdiction is required"}
	}

	w := r.WaitPeriods
	constants := []struct {
		name string
		v    *int
	}{
		{"wait_periods.unfiled.class_c_days", w.Unfiled.ClassCDays},
		{"wait_periods.unfiled.misdemeanor_years", w.Unfiled.MisdemeanorYears},
		{"wait_periods.unfiled.felony_years", w.Unfiled.FelonyYears},
		{"wait_periods.dismissed.misdemeanor_years", w.Dismissed.MisdemeanorYears},
		{"wait_periods.dismissed.felony_standard_years", w.Dismissed.FelonyStandardYears},
		{"wait_periods.dismissed.felony_fraud_years", w.Dismissed.FelonyFraudYears},
		{"wait_periods.dismissed.felony_deed_theft_years", w.Dismissed.FelonyDeedTheftYears},
		{"wait_periods.deferred.felony_years", w.Deferred.FelonyYears},
		{"wait_periods.deferred.misdemeanor_years", w.Deferred.MisdemeanorYears},
		{"wait_periods.deferred.misdemeanor_minor_nonviolent_years", w.Deferred.MisdemeanorMinorNonviolentYears},
		{"wait_periods.convicted_misdemeanor_years", w.ConvictedMisdemeanorYears},
	}
	for _, c := range constants {
		if c.v == nil {
			return &domain.ConfigurationError{Detail: fmt.Sprintf("statutory constant %s is missing", c.name)}
		}
		if *c.v < 0 {
			return &domain.ConfigurationError{Detail: fmt.Sprintf("statutory constant %s is negative", c.name)}
		}
	}

	for _, id := range []string{ServiceStandard, ServiceRush, ServicePaymentPlan, ServiceDiscovery} {
		if _, ok := r.Service(id); !ok {
			return &domain.ConfigurationError{Detail: fmt.Sprintf("service %q is missing", id)}
		}
	}
	return nil
}

// Service looks a service up by id.
func (r *Rules) Service(id string) (Service, bool) {
	for _, s := range r.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// PriceLabel returns the formatted price of a service, or "" when unknown.
func (r *Rules) PriceLabel(id string) string {
	s, _ := r.Service(id)
	return s.PriceLabel()
}

// URL returns the link of a service, or "" when unknown.
func (r *Rules) URL(id string) string {
	s, _ := r.Service(id)
	return s.URL
}

// Catalog is the read-only host metadata table.
type Catalog struct {
	OffenseCategories []Category `json:"offense_categories"`
	Jurisdictions     []Category `json:"states"`
	Services          []Service  `json:"services"`
}

// Catalog returns copies of the offense category, jurisdiction and service tables.
func (r *Rules) Catalog() Catalog {
	return Catalog{
		OffenseCategories: append([]Category(nil), r.OffenseCategories...),
		Jurisdictions:     append([]Category(nil), r.Jurisdictions...),
		Services:          append([]Service(nil), r.Services...),
	}
}

func years(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

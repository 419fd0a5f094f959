package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrUnknownCategory is returned when a category name is not recognized.
var ErrUnknownCategory = errors.New("unknown category")

// Category identifies a built-in record generator.
type Category int

const (
	CategoryPersonal Category = iota
	CategoryFinancial
	CategoryBusiness
	CategoryGeographic
	CategoryInternet

	categoryCount
)

// CustomCategory is the history label for schema-driven runs.
const CustomCategory = "custom"

// GeneratorFunc builds count records. Callers validate count before calling.
type GeneratorFunc func(r *rand.Rand, now time.Time, count int) Dataset

// CategoryInfo contains display information about a category.
type CategoryInfo struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Fields []string `json:"fields"`
}

type categoryDefinition struct {
	Info     CategoryInfo
	Generate GeneratorFunc
}

// categories is indexed by Category. Every constant below categoryCount
// must have an entry.
var categories = [categoryCount]categoryDefinition{
	CategoryPersonal: {
		Info: CategoryInfo{
			Key:    "personal",
			Label:  "Personal",
			Fields: []string{"id", "firstName", "lastName", "email", "phone", "age", "address"},
		},
		Generate: GeneratePersonal,
	},
	CategoryFinancial: {
		Info: CategoryInfo{
			Key:    "financial",
			Label:  "Financial",
			Fields: []string{"id", "accountNumber", "balance", "currency", "transactionDate", "transactionAmount", "category"},
		},
		Generate: GenerateFinancial,
	},
	CategoryBusiness: {
		Info: CategoryInfo{
			Key:    "business",
			Label:  "Business",
			Fields: []string{"id", "company", "employeeCount", "revenue", "industry", "founded"},
		},
		Generate: GenerateBusiness,
	},
	CategoryGeographic: {
		Info: CategoryInfo{
			Key:    "geographic",
			Label:  "Geographic",
			Fields: []string{"id", "city", "country", "latitude", "longitude", "population"},
		},
		Generate: GenerateGeographic,
	},
	CategoryInternet: {
		Info: CategoryInfo{
			Key:    "internet",
			Label:  "Internet",
			Fields: []string{"id", "ip", "userAgent", "browser", "os", "visitDate"},
		},
		Generate: GenerateInternet,
	},
}

// ParseCategory resolves a category name (case-insensitive).
func ParseCategory(name string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, def := range categories {
		if def.Info.Key == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// String returns the category key.
func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categories[c].Info.Key
}

// Info returns the display information for c.
func (c Category) Info() CategoryInfo {
	return categories[c].Info
}

// Generate builds count records for c.
func (c Category) Generate(r *rand.Rand, now time.Time, count int) Dataset {
	return categories[c].Generate(r, now, count)
}

// Categories returns every built-in category in declaration order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	for i, def := range categories {
		out[i] = def.Info
	}
	return out
}

// GeneratePersonal builds records with id, name, contact details, age and address.
func GeneratePersonal(r *rand.Rand, now time.Time, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(7)
		rec.Set("id", i+1)
		rec.Set("firstName", MustElement(r, FirstNames))
		rec.Set("lastName", MustElement(r, LastNames))
		rec.Set("email", Email(r))
		rec.Set("phone", Phone(r))
		rec.Set("age", RandomInt(r, 18, 80))
		rec.Set("address", Address(r))
		data = append(data, rec)
	}
	return data
}

// GenerateFinancial builds account and transaction records.
func GenerateFinancial(r *rand.Rand, now time.Time, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(7)
		rec.Set("id", i+1)
		rec.Set("accountNumber", AccountNumber(r))
		rec.Set("balance", RandomInt(r, 100, 100000))
		rec.Set("currency", "USD")
		rec.Set("transactionDate", Date(r, now))
		rec.Set("transactionAmount", RandomInt(r, -5000, 5000))
		rec.Set("category", MustElement(r, TransactionCategories))
		data = append(data, rec)
	}
	return data
}

// GenerateBusiness builds company records.
func GenerateBusiness(r *rand.Rand, now time.Time, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(6)
		rec.Set("id", i+1)
		rec.Set("company", MustElement(r, Companies))
		rec.Set("employeeCount", RandomInt(r, 10, 10000))
		rec.Set("revenue", RandomInt(r, 100000, 10000000))
		rec.Set("industry", MustElement(r, Industries))
		rec.Set("founded", RandomInt(r, 1980, 2020))
		data = append(data, rec)
	}
	return data
}

// GenerateGeographic builds city records with coordinates as 6-decimal strings.
func GenerateGeographic(r *rand.Rand, now time.Time, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(6)
		rec.Set("id", i+1)
		rec.Set("city", MustElement(r, Cities))
		rec.Set("country", MustElement(r, Countries))
		rec.Set("latitude", Coordinate(r, -90, 90))
		rec.Set("longitude", Coordinate(r, -180, 180))
		rec.Set("population", RandomInt(r, 10000, 10000000))
		data = append(data, rec)
	}
	return data
}

// GenerateInternet builds visit records.
func GenerateInternet(r *rand.Rand, now time.Time, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(6)
		rec.Set("id", i+1)
		rec.Set("ip", IP(r))
		rec.Set("userAgent", UserAgent(r))
		rec.Set("browser", MustElement(r, Browsers))
		rec.Set("os", MustElement(r, OperatingSystems))
		rec.Set("visitDate", Date(r, now))
		data = append(data, rec)
	}
	return data
}

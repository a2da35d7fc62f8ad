package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of household input files
type InputParser struct {
	validate *validator.Validate
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InputParser{validate: v}
}

// decimalValue lets numeric tags (gte, lte, gt) compare decimal fields.
func decimalValue(v reflect.Value) any {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// LoadFromFile loads a household from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Household, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes YAML household data, assigns missing entity ids and validates the result.
func (ip *InputParser) Parse(data []byte) (*domain.Household, error) {
	var h domain.Household
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	AssignIDs(&h)

	if err := ip.ValidateHousehold(&h); err != nil {
		return nil, fmt.Errorf("household validation failed: %w", err)
	}
	return &h, nil
}

// AssignIDs gives every entity without an id a random one.
func AssignIDs(h *domain.Household) {
	for i := range h.Incomes {
		h.Incomes[i].ID = idOrNew(h.Incomes[i].ID)
	}
	for i := range h.Expenses {
		h.Expenses[i].ID = idOrNew(h.Expenses[i].ID)
	}
	for i := range h.Savings {
		h.Savings[i].ID = idOrNew(h.Savings[i].ID)
	}
	for i := range h.Pensions {
		h.Pensions[i].ID = idOrNew(h.Pensions[i].ID)
	}
	for i := range h.RealEstates {
		h.RealEstates[i].ID = idOrNew(h.RealEstates[i].ID)
	}
	for i := range h.Debts {
		h.Debts[i].ID = idOrNew(h.Debts[i].ID)
	}
	for i := range h.Assets {
		h.Assets[i].ID = idOrNew(h.Assets[i].ID)
	}
}

func idOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// ValidateHousehold checks struct tags first and then the rules that span fields and entities.
func (ip *InputParser) ValidateHousehold(h *domain.Household) error {
	if h == nil {
		return fmt.Errorf("%w: household is required", calculation.ErrMalformedEntity)
	}
	if err := ip.validate.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", calculation.ErrMalformedEntity, describe(verrs))
		}
		return err
	}

	for _, d := range h.Debts {
		if n := d.EndYear - d.StartYear + 1; d.DebtType == domain.DebtGrace && d.GracePeriod >= n {
			return fmt.Errorf("debt %q: %w: grace period %d must be shorter than the %d-year term",
				d.Title, calculation.ErrDegenerateSchedule, d.GracePeriod, n)
		}
	}
	for _, p := range h.Pensions {
		if p.Type != domain.PensionNational && p.EffectivePaymentYears() <= 0 {
			return fmt.Errorf("pension %q: %w: payment years must be positive", p.Title, calculation.ErrDegenerateSchedule)
		}
	}

	for _, year := range h.RuleYears() {
		if rules := h.AllocationRules[year]; len(rules) > 0 {
			if err := calculation.ValidateAllocationRules(rules); err != nil {
				return fmt.Errorf("allocation rules for %d: %w", year, err)
			}
		}
		for _, w := range h.WithdrawalRules[year] {
			if !hasSaving(h, w.SourceID) {
				return fmt.Errorf("withdrawal rule for %d: %w: no saving with id %q", year, calculation.ErrUnknownTarget, w.SourceID)
			}
		}
	}

	// The normalizer re-checks windows, frequencies, ids and schedules.
	profile := h.Profile
	if profile.CurrentYear == 0 {
		profile.CurrentYear, _ = calculation.ProjectionYears(profile)
	}
	if _, err := calculation.Normalize(profile, h.Entities()); err != nil {
		return err
	}
	return nil
}

func hasSaving(h *domain.Household, id string) bool {
	for _, s := range h.Savings {
		if s.ID == id {
			return true
		}
	}
	return false
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Household.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// SaveHousehold writes a household to a YAML file
func (ip *InputParser) SaveHousehold(h *domain.Household, filename string) error {
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to encode household: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// CreateExampleHousehold creates an example household covering every entity kind
func (ip *InputParser) CreateExampleHousehold() *domain.Household {
	d := decimal.RequireFromString
	incomeRate := d("3")

	return &domain.Household{
		Profile: domain.Profile{
			Name:          "Example household",
			BirthYear:     1985,
			RetirementAge: 60,
			CurrentCash:   d("30000000"),
			TargetAssets:  d("1500000000"),
			CurrentYear:   2025,
		},
		Incomes: []domain.Income{
			{ID: "salary", Title: "Salary", Amount: d("4500000"), Frequency: domain.FrequencyMonthly,
				StartYear: 2025, EndYear: 2044, GrowthRate: d("3")},
		},
		Expenses: []domain.Expense{
			{ID: "living", Title: "Living costs", Amount: d("2200000"), Frequency: domain.FrequencyMonthly,
				StartYear: 2025, EndYear: 2074, GrowthRate: d("2.5")},
		},
		Savings: []domain.Saving{
			{ID: "deposit", Title: "Term deposit", Amount: d("500000"), Frequency: domain.FrequencyMonthly,
				CurrentAmount: d("10000000"), InterestRate: d("3.5"), CapitalGainsTaxRate: d("15.4"),
				StartYear: 2025, EndYear: 2034},
			{ID: "dividend", Title: "Dividend fund", Frequency: domain.FrequencyYearly,
				CurrentAmount: d("20000000"), IncomeRate: &incomeRate, CapitalGainsTaxRate: d("15.4"),
				StartYear: 2025, EndYear: 2050},
		},
		Pensions: []domain.Pension{
			{ID: "national", Title: "National pension", Type: domain.PensionNational,
				MonthlyAmount: d("1100000"), InflationRate: d("2"), StartYear: 2050, EndYear: 2074},
			{ID: "company", Title: "Company pension", Type: domain.PensionRetirement,
				ContributionAmount: d("300000"), ContributionFrequency: domain.FrequencyMonthly,
				ContributionStartYear: 2025, ContributionEndYear: 2044, ReturnRate: d("4"),
				PaymentStartYear: 2045, PaymentYears: 20},
			{ID: "severance", Title: "Severance pay", Type: domain.PensionSeverance,
				AverageSalary: d("5000000"), YearsOfService: d("8"), NoAdditionalContribution: true,
				PaymentStartYear: 2045, PaymentYears: 1},
		},
		RealEstates: []domain.RealEstate{
			{ID: "home", Title: "Apartment", CurrentValue: d("600000000"), GrowthRate: d("2"),
				StartYear: 2025, EndYear: 2074,
				PensionStartYear: 2055, MonthlyPensionAmount: d("1200000")},
		},
		Debts: []domain.Debt{
			{ID: "mortgage", Title: "Mortgage", DebtAmount: d("200000000"), InterestRate: d("4.2"),
				DebtType: domain.DebtGrace, GracePeriod: 2, StartYear: 2023, EndYear: 2042},
		},
		Assets: []domain.Asset{
			{ID: "etf", Title: "Index ETF", CurrentValue: d("15000000"), GrowthRate: d("6"),
				CapitalGainsTaxRate: d("22"), StartYear: 2025, EndYear: 2050},
		},
		AllocationRules: map[int][]domain.AllocationRule{
			2025: {
				{TargetType: domain.TargetCash, Ratio: d("50")},
				{TargetType: domain.TargetSaving, TargetID: "deposit", Ratio: d("30")},
				{TargetType: domain.TargetPension, TargetID: "company", Ratio: d("20")},
			},
		},
		WithdrawalRules: map[int][]domain.WithdrawalRule{
			2046: {{SourceType: domain.SourceSaving, SourceID: "dividend", Amount: d("5000000")}},
		},
	}
}

package models

// PartialMacros is a macro record from a collaborator where any field may be
// unknown. A nil field means "not detected", which is different from zero.
type PartialMacros struct {
	Protein    *float64 `json:"protein"`
	Fat        *float64 `json:"fat"`
	TotalCarbs *float64 `json:"total_carbs"`
	Fiber      *float64 `json:"fiber"`
	Sugar      *float64 `json:"sugar"`
}

// OcrResponse is the label-scan result, named after the label rows.
type OcrResponse struct {
	Protein           *float64 `json:"protein"`
	TotalFat          *float64 `json:"total_fat"`
	TotalCarbohydrate *float64 `json:"total_carbohydrate"`
	DietaryFiber      *float64 `json:"dietary_fiber"`
	TotalSugars       *float64 `json:"total_sugars"`
	Servings          *float64 `json:"servings"`
}

// ExtractedMacrosResponse is the food-name lookup result.
type ExtractedMacrosResponse = PartialMacros

// Partial maps the label field names onto the macro record.
func (o OcrResponse) Partial() PartialMacros {
	return PartialMacros{
		Protein:    o.Protein,
		Fat:        o.TotalFat,
		TotalCarbs: o.TotalCarbohydrate,
		Fiber:      o.DietaryFiber,
		Sugar:      o.TotalSugars,
	}
}

// ServingCount returns the detected servings, or 1 when absent or not positive.
func (o OcrResponse) ServingCount() float64 {
	if o.Servings == nil || *o.Servings <= 0 {
		return 1
	}
	return *o.Servings
}

// Empty reports whether no field was detected.
func (p PartialMacros) Empty() bool {
	return p.Protein == nil && p.Fat == nil && p.TotalCarbs == nil && p.Fiber == nil && p.Sugar == nil
}

// Missing lists the wire names of absent fields in canonical order.
func (p PartialMacros) Missing() []string {
	var missing []string
	for _, f := range p.fields() {
		if *f.ptr == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Scale multiplies every present field by servings. Non-positive servings count as one.
func (p PartialMacros) Scale(servings float64) PartialMacros {
	if servings <= 0 {
		servings = 1
	}
	out := p
	for _, f := range out.fields() {
		if *f.ptr != nil {
			v := **f.ptr * servings
			*f.ptr = &v
		}
	}
	return out
}

// Resolve substitutes def for every absent field and returns the names that were substituted.
func (p PartialMacros) Resolve(def float64) (MacroNutrients, []string) {
	get := func(v *float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	m := MacroNutrients{
		Protein:    get(p.Protein),
		Fat:        get(p.Fat),
		TotalCarbs: get(p.TotalCarbs),
		Fiber:      get(p.Fiber),
		Sugar:      get(p.Sugar),
	}
	return m, p.Missing()
}

// Merge fills absent fields of p from other.
func (p PartialMacros) Merge(other PartialMacros) PartialMacros {
	out := p
	src := other.fields()
	for i, f := range out.fields() {
		if *f.ptr == nil {
			*f.ptr = *src[i].ptr
		}
	}
	return out
}

type partialField struct {
	name string
	ptr  **float64
}

func (p *PartialMacros) fields() []partialField {
	return []partialField{
		{"protein", &p.Protein},
		{"fat", &p.Fat},
		{"total_carbs", &p.TotalCarbs},
		{"fiber", &p.Fiber},
		{"sugar", &p.Sugar},
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Registry pins the platform identifiers this deployment is wired to:
// option-set ids for the surveillance vocabularies, attribute ids used on
// disease-code and pathogen options, and the data elements behind the
// dashboard and alert screens. Identifiers differ per platform instance, so
// the compiled-in defaults can be overridden from a YAML file.
type Registry struct {
	OptionSets   OptionSetIDs      `yaml:"optionSets" json:"optionSets"`
	Attributes   AttributeIDs      `yaml:"attributes" json:"attributes"`
	DataElements DataElementIDs    `yaml:"dataElements" json:"dataElements"`
	AlertFields  map[string]string `yaml:"alertFields" json:"alertFields"`
}

type OptionSetIDs struct {
	DiseaseCodes    string `yaml:"diseaseCodes" json:"diseaseCodes"`
	Pathogens       string `yaml:"pathogens" json:"pathogens"`
	DiseaseCategory string `yaml:"diseaseCategory" json:"diseaseCategory"`
	PathogenType    string `yaml:"pathogenType" json:"pathogenType"`
	BiosafetyLevel  string `yaml:"biosafetyLevel" json:"biosafetyLevel"`
	RiskLevel       string `yaml:"riskLevel" json:"riskLevel"`
}

type AttributeIDs struct {
	ICDCode         string `yaml:"icdCode" json:"icdCode"`
	Category        string `yaml:"category" json:"category"`
	RiskLevel       string `yaml:"riskLevel" json:"riskLevel"`
	RelatedPathogen string `yaml:"relatedPathogen" json:"relatedPathogen"`
	Notifiable      string `yaml:"notifiable" json:"notifiable"`
	Description     string `yaml:"description" json:"description"`
	PathogenType    string `yaml:"pathogenType" json:"pathogenType"`
	BiosafetyLevel  string `yaml:"biosafetyLevel" json:"biosafetyLevel"`
	Taxonomy        string `yaml:"taxonomy" json:"taxonomy"`
	Zoonotic        string `yaml:"zoonotic" json:"zoonotic"`
}

type DataElementIDs struct {
	ProcessingCases string `yaml:"processingCases" json:"processingCases"`
	VerifiedCases   string `yaml:"verifiedCases" json:"verifiedCases"`
	NewCases        string `yaml:"newCases" json:"newCases"`
	AlertCount      string `yaml:"alertCount" json:"alertCount"`
	Specimen        string `yaml:"specimen" json:"specimen"`
	TestType        string `yaml:"testType" json:"testType"`
	TestResult      string `yaml:"testResult" json:"testResult"`
	TestStatus      string `yaml:"testStatus" json:"testStatus"`
	Laboratory      string `yaml:"laboratory" json:"laboratory"`
}

func Load(path string) (Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRegistry(), err
	}
	reg := DefaultRegistry()
	if err := yaml.Unmarshal(content, &reg); err != nil {
		return Registry{}, err
	}
	if err := reg.validate(); err != nil {
		return Registry{}, err
	}
	return reg, nil
}

func (r Registry) validate() error {
	for name, id := range map[string]string{
		"optionSets.diseaseCodes":    r.OptionSets.DiseaseCodes,
		"optionSets.pathogens":       r.OptionSets.Pathogens,
		"optionSets.diseaseCategory": r.OptionSets.DiseaseCategory,
		"optionSets.pathogenType":    r.OptionSets.PathogenType,
		"optionSets.biosafetyLevel":  r.OptionSets.BiosafetyLevel,
		"optionSets.riskLevel":       r.OptionSets.RiskLevel,
	} {
		if id == "" {
			return fmt.Errorf("metadata registry missing %s", name)
		}
	}
	return nil
}

// RequiredOptionSets lists the vocabularies primed into the cache at
// startup, in priming order.
func (r Registry) RequiredOptionSets() []string {
	return []string{
		r.OptionSets.DiseaseCodes,
		r.OptionSets.Pathogens,
		r.OptionSets.DiseaseCategory,
		r.OptionSets.PathogenType,
		r.OptionSets.BiosafetyLevel,
		r.OptionSets.RiskLevel,
	}
}

// AlertField resolves a data element id to the semantic alert field it
// carries (title, type, content, source, time). Unknown ids map to "".
func (r Registry) AlertField(dataElementID string) string {
	return r.AlertFields[dataElementID]
}

func DefaultRegistry() Registry {
	return Registry{
		OptionSets: OptionSetIDs{
			DiseaseCodes:    "Qp4LKznenW2",
			Pathogens:       "Xh7f3GmRs1C",
			DiseaseCategory: "Kd2uYwPbvT9",
			PathogenType:    "Vn8cRqJdmE4",
			BiosafetyLevel:  "Bw5kTfXzuL6",
			RiskLevel:       "Rj3mNhQasY7",
		},
		Attributes: AttributeIDs{
			ICDCode:         "Ic9dWpLxnF2",
			Category:        "Ca4tYbRkmQ8",
			RiskLevel:       "Rl6vZjNcsW3",
			RelatedPathogen: "Rp2gXkMduB5",
			Notifiable:      "Nf8hQwTyvK4",
			Description:     "De3sLmVbpJ7",
			PathogenType:    "Pt5jRnXcwA9",
			BiosafetyLevel:  "Bl7kMqZfsD2",
			Taxonomy:        "Tx4wYvNbgH6",
			Zoonotic:        "Zo9cKrJmtE3",
		},
		DataElements: DataElementIDs{
			ProcessingCases: "Dp2fXwQksR5",
			VerifiedCases:   "Dv6jYmNbcT8",
			NewCases:        "Dn4hRkZvuW2",
			AlertCount:      "Da7gLqXmsE9",
			Specimen:        "Ls3tWpJdnK6",
			TestType:        "Lt8vMhQbyF4",
			TestResult:      "Lr5kZcXwmA2",
			TestStatus:      "Lc9jTnRvsG7",
			Laboratory:      "Ll2mYfKdqB8",
		},
		AlertFields: map[string]string{
			"At4wQjZmrK2": "title",
			"Ay7cXkNvsF5": "type",
			"Ac9hLmRbtW3": "content",
			"As2jYwQdnE8": "source",
			"Am6vZfXksT4": "time",
			"Ao3kMhJcvL9": "orgUnit",
			"Ar8tWqYbmD5": "status",
		},
	}
}

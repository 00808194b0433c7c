package capabilities

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/toolbench/portal/internal/models"
)

// RegexSample is one entry of the built-in regular expression catalog
type RegexSample struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Explanation string `json:"explanation"`
}

var regexSamples = []RegexSample{
	{
		Name:    "Email",
		Pattern: `(?:[a-zA-Z0-9._%+-]+)@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}`,
		Explanation: "Matches one or more letters, digits or the characters . _ % + - " +
			"before the @ sign, a domain of letters, digits and hyphens, and a " +
			"top-level domain of at least two letters.",
	},
	{
		Name:    "NRIC",
		Pattern: `(?i)(S|T|F|G)\d{7}[A-Z]`,
		Explanation: "Case-insensitive match of an NRIC: a leading S, T, F or G, " +
			"exactly seven digits, and a checksum letter.",
	},
	{
		Name:    "Websites",
		Pattern: `^(https?|ftp):\/\/[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(\/[a-zA-Z0-9#?=&.-]*)?$`,
		Explanation: "Matches a URL starting with http, https or ftp, followed by " +
			"a domain name and an optional path.",
	},
	{
		Name:    "Phone Number",
		Pattern: `^\+65\d{8}$`,
		Explanation: "Matches a Singapore handphone number: the +65 country code " +
			"followed by exactly eight digits.",
	},
}

// runRegex serves the sample catalog. With an empty input it returns the
// whole catalog; with a sample name it returns that entry only.
func (reg *Registry) runRegex(input []byte) (Result, error) {
	requested := strings.TrimSpace(string(input))

	if requested == "" {
		body, err := json.Marshal(regexSamples)
		if err != nil {
			return Result{}, fmt.Errorf("marshal regex samples: %w", err)
		}
		return Result{ContentType: "application/json", Body: body}, nil
	}

	for _, sample := range regexSamples {
		if strings.EqualFold(sample.Name, requested) {
			body, err := json.Marshal(sample)
			if err != nil {
				return Result{}, fmt.Errorf("marshal regex sample: %w", err)
			}
			return Result{ContentType: "application/json", Body: body}, nil
		}
	}

	return Result{}, fmt.Errorf("%w: unknown regex sample %q", models.ErrValidation, requested)
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jpark-labs/lexscout/internal/llm"
)

// identityTool compares the lessor named in a lease agreement against the
// owner listed in the property registration. It states assumptions from
// the provided names; it does not prove legal identity.
type identityTool struct{}

// NewIdentityTool returns the identity-assumption verification capability.
func NewIdentityTool() Tool {
	return &identityTool{}
}

func (t *identityTool) Name() string { return "verify_identity_assumptions" }

func (t *identityTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: t.Name(),
		Description: "Compare the lessor's name from the lease agreement with the owner's name " +
			"from the property registration to flag potential fraud risks. States assumptions " +
			"based on the provided names only; it does not prove legal identity.",
		Properties: map[string]interface{}{
			"lessor_name": map[string]interface{}{
				"type":        "string",
				"description": "The name of the lessor as written in the lease agreement",
			},
			"owner_name": map[string]interface{}{
				"type":        "string",
				"description": "The name of the owner as listed in the property registration",
			},
		},
		Required: []string{"lessor_name", "owner_name"},
	}
}

func (t *identityTool) Invoke(_ context.Context, input json.RawMessage) (string, error) {
	var params struct {
		LessorName string `json:"lessor_name"`
		OwnerName  string `json:"owner_name"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}
	if params.LessorName == "" || params.OwnerName == "" {
		return "", fmt.Errorf("lessor_name and owner_name are required")
	}

	if normalizeName(params.LessorName) == normalizeName(params.OwnerName) {
		return "ASSUMPTION: OWNER NAME MATCH.\n" +
			"The lessor on the lease agreement and the owner on the property registration appear " +
			"to be the same name. This supports the contract's credibility, but final identity " +
			"confirmation still requires an ID check at signing.", nil
	}

	return fmt.Sprintf("CRITICAL RISK: OWNER NAME MISMATCH.\n"+
		"The lease agreement names %q as lessor, but the property registration lists %q as owner. "+
		"This may indicate a proxy contract or, at worst, deposit fraud. Demand documents proving "+
		"lawful representation (power of attorney, certificate of seal) immediately; do not proceed "+
		"with the contract until verified.", params.LessorName, params.OwnerName), nil
}

// normalizeName strips whitespace so "홍 길동" and "홍길동" compare equal.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), "")
}

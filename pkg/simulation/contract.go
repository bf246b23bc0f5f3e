package simulation

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contractDocument []byte

// ErrContractViolation wraps payloads that do not match the API contract.
var ErrContractViolation = errors.New("simulation: payload violates contract")

// SimulationsPath is the route the contract defines for starting a run.
const SimulationsPath = "/simulations"

// Contract validates simulation requests against the bundled OpenAPI
// document.
type Contract struct {
	doc         *openapi3.T
	request     *openapi3.Schema
	operationID string
}

// LoadContract parses raw as an OpenAPI 3 document and locates the request
// schema of POST /simulations.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("simulation: contract document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("simulation: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("simulation: validate contract: %w", err)
	}

	if doc.Paths == nil {
		return nil, errors.New("simulation: contract has no paths")
	}
	item := doc.Paths.Find(SimulationsPath)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("simulation: contract has no POST %s", SimulationsPath)
	}
	body := item.Post.RequestBody
	if body == nil || body.Value == nil {
		return nil, fmt.Errorf("simulation: POST %s has no request body", SimulationsPath)
	}
	media := body.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("simulation: POST %s has no JSON request schema", SimulationsPath)
	}

	return &Contract{
		doc:         doc,
		request:     media.Schema.Value,
		operationID: item.Post.OperationID,
	}, nil
}

var (
	bundledOnce     sync.Once
	bundledContract *Contract
	bundledErr      error
)

// BundledContract returns the contract embedded in the binary.
func BundledContract() (*Contract, error) {
	bundledOnce.Do(func() {
		bundledContract, bundledErr = LoadContract(context.Background(), contractDocument)
	})
	return bundledContract, bundledErr
}

// Document returns the raw embedded OpenAPI document.
func Document() []byte {
	return append([]byte(nil), contractDocument...)
}

// OperationID names the start operation.
func (c *Contract) OperationID() string {
	return c.operationID
}

// Title is the API title from the document info block.
func (c *Contract) Title() string {
	if c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// ValidatePayload checks p against the request schema.
func (c *Contract) ValidatePayload(p Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("simulation: encode payload: %w", err)
	}
	return c.ValidateBody(raw)
}

// ValidateBody checks a raw JSON request body against the request schema.
func (c *Contract) ValidateBody(raw []byte) error {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: body is not JSON: %v", ErrContractViolation, err)
	}
	if err := c.request.VisitJSON(decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/repository"
)

type seededOperation struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Cost string `json:"cost"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		costsInput  = flag.String("costs", "", "Comma-separated type=cost overrides, e.g. addition=1.0,random_string=2.5")
		defaultCost = flag.String("default-cost", "1.0", "Cost for operation types without an override")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	costs, err := parseCosts(*costsInput, *defaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	existing, err := existingTypes(ctx, repo)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list operations:", err)
		os.Exit(1)
	}

	var seeded []seededOperation
	for _, opType := range model.OperationTypes {
		if existing[opType] {
			continue
		}
		op, err := repo.CreateOperation(ctx, opType, costs[opType])
		if err != nil {
			fmt.Fprintln(os.Stderr, "create operation:", err)
			os.Exit(1)
		}
		seeded = append(seeded, seededOperation{
			ID:   op.ID,
			Type: string(op.Type),
			Cost: op.Cost.String(),
		})
	}

	switch strings.ToLower(*format) {
	case "plain":
		for _, op := range seeded {
			fmt.Printf("%d\t%s\t%s\n", op.ID, op.Type, op.Cost)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(seeded)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// parseCosts builds the cost table for all known operation types from
// the override string and the default.
func parseCosts(input, fallback string) (map[model.OperationType]decimal.Decimal, error) {
	def, err := decimal.NewFromString(fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid default cost: %s", fallback)
	}

	costs := make(map[model.OperationType]decimal.Decimal, len(model.OperationTypes))
	for _, opType := range model.OperationTypes {
		costs[opType] = def
	}

	if strings.TrimSpace(input) == "" {
		return costs, nil
	}

	for _, part := range strings.Split(input, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid cost override: %s", part)
		}
		opType := model.OperationType(pair[0])
		if !opType.IsValid() {
			return nil, fmt.Errorf("invalid operation type: %s", pair[0])
		}
		cost, err := decimal.NewFromString(pair[1])
		if err != nil || cost.IsNegative() {
			return nil, fmt.Errorf("invalid cost for %s: %s", pair[0], pair[1])
		}
		costs[opType] = cost
	}

	return costs, nil
}

// existingTypes pages through the catalog so reruns do not duplicate it.
func existingTypes(ctx context.Context, repo *repository.Repository) (map[model.OperationType]bool, error) {
	existing := make(map[model.OperationType]bool)
	const pageSize = 100
	for skip := 0; ; skip += pageSize {
		ops, err := repo.ListOperations(ctx, skip, pageSize)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			existing[op.Type] = true
		}
		if len(ops) < pageSize {
			return existing, nil
		}
	}
}

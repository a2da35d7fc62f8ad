package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	calc "github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/domain"
)

var categories = []domain.Category{
	domain.CategoryIncome,
	domain.CategoryExpense,
	domain.CategorySaving,
	domain.CategoryPension,
	domain.CategoryRealEstate,
	domain.CategoryDebt,
	domain.CategoryTax,
	domain.CategoryAsset,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_cashflow <household-file>")
		return
	}
	h, err := config.NewInputParser().LoadFromFile(os.Args[1])
	if err != nil {
		panic(err)
	}
	snapshots, err := calc.NewProjectionEngine().GenerateProjection(context.Background(), h)
	if err != nil {
		// print what was projected before the failure
		fmt.Fprintln(os.Stderr, err)
	}
	if len(snapshots) == 0 {
		fmt.Println("no projection data")
		return
	}

	// Header
	header := []string{"Year", "Age"}
	for _, c := range categories {
		header = append(header, string(c))
	}
	header = append(header, "Net", "Cash", "NetAssets")
	fmt.Println(strings.Join(header, ","))

	for _, s := range snapshots {
		row := []string{fmt.Sprint(s.Year), fmt.Sprint(s.Age)}
		for _, c := range categories {
			row = append(row, s.CategoryTotal(c).StringFixed(2))
		}
		row = append(row, s.NetCashFlow.StringFixed(2), s.Cash.StringFixed(2), s.NetAssets.StringFixed(2))
		fmt.Println(strings.Join(row, ","))
	}
}

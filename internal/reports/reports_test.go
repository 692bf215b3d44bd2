package reports

import (
	"testing"
	"time"

	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
)

func TestTransactionCode(t *testing.T) {
	o := orders.Order{
		ID: "ab12cd34-ef56-7890-abcd-ef1234567890",
		// 2024-03-15 02:00 in UTC+8.
		CreatedAt: time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC),
	}
	got := TransactionCode(o)
	want := "TXN-20240315-AB12CD34"
	if got != want {
		t.Fatalf("TransactionCode = %q, want %q", got, want)
	}
}

func TestTransactionCodeDeterministic(t *testing.T) {
	o := orders.Order{ID: "deadbeef-0000-0000-0000-000000000000", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	if TransactionCode(o) != TransactionCode(o) {
		t.Fatal("expected identical codes for identical input")
	}
}

func TestResolveRangeThisWeekOnWednesday(t *testing.T) {
	// Wednesday 2024-03-13 local noon.
	now := time.Date(2024, 3, 13, 4, 0, 0, 0, time.UTC)
	r, err := ResolveRange(RangeThisWeek, "", "", now)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if got := phtime.FormatDate(r.Start); got != "2024-03-11" {
		t.Fatalf("expected week start Monday 2024-03-11, got %s", got)
	}
	if got := phtime.FormatDate(r.End); got != "2024-03-17" {
		t.Fatalf("expected week end Sunday 2024-03-17, got %s", got)
	}
	local := r.End.In(phtime.Location)
	if local.Hour() != 23 || local.Minute() != 59 || local.Second() != 59 {
		t.Fatalf("expected end at 23:59:59.999 local, got %v", local)
	}
	if want := "THIS_WEEK_2024-03-11_to_2024-03-17"; r.Label() != want {
		t.Fatalf("label = %q, want %q", r.Label(), want)
	}
}

func TestResolveRangeToday(t *testing.T) {
	// 18:00 UTC is already the next calendar day in UTC+8.
	now := time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC)
	r, err := ResolveRange(RangeToday, "", "", now)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if got := phtime.FormatDate(r.Start); got != "2024-03-15" {
		t.Fatalf("expected local day 2024-03-15, got %s", got)
	}
	if want := "TODAY_2024-03-15"; r.Label() != want {
		t.Fatalf("label = %q, want %q", r.Label(), want)
	}
}

func TestResolveRangeCustomRequiresBothDates(t *testing.T) {
	now := time.Now()
	if _, err := ResolveRange(RangeCustom, "2024-01-01", "", now); err != ErrCustomDatesRequired {
		t.Fatalf("expected ErrCustomDatesRequired, got %v", err)
	}
	if _, err := ResolveRange(RangeCustom, "", "2024-01-31", now); err != ErrCustomDatesRequired {
		t.Fatalf("expected ErrCustomDatesRequired, got %v", err)
	}
	r, err := ResolveRange(RangeCustom, "2024-01-01", "2024-01-31", now)
	if err != nil {
		t.Fatalf("ResolveRange custom: %v", err)
	}
	if want := "CUSTOM_2024-01-01_to_2024-01-31"; r.Label() != want {
		t.Fatalf("label = %q, want %q", r.Label(), want)
	}
}

func TestResolveRangeAll(t *testing.T) {
	r, err := ResolveRange(RangeAll, "", "", time.Now())
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if !r.All || !r.Start.IsZero() || !r.End.IsZero() {
		t.Fatalf("expected unbounded range, got %+v", r)
	}
	if r.Label() != "ALL" {
		t.Fatalf("label = %q, want ALL", r.Label())
	}
}

func TestResolveRangeUnknownPreset(t *testing.T) {
	if _, err := ResolveRange("fortnight", "", "", time.Now()); err != ErrUnknownRange {
		t.Fatalf("expected ErrUnknownRange, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC)
	r, err := ResolveRange(RangeToday, "", "", now)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	got := Filename(r, now)
	want := "Transaction_History_TODAY_2024-03-15_2024-03-15.xlsx"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}

func TestBuildTransactionXLSX(t *testing.T) {
	list := []orders.Order{
		{ID: "ab12cd34-0000-0000-0000-000000000000", CustomerName: "Acme Hardware", Status: "completed", Total: 10000, SalesTax: 1200, CreatedAt: time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)},
		{ID: "ff00aa11-0000-0000-0000-000000000000", Status: "completed", Total: 500},
	}
	data, err := BuildTransactionXLSX(list)
	if err != nil {
		t.Fatalf("BuildTransactionXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty workbook")
	}
	again, err := BuildTransactionXLSX(list)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if len(again) == 0 {
		t.Fatal("expected deterministic non-empty workbook")
	}
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"coverscope/internal/catalog"
	catmodels "coverscope/internal/catalog/models"
	catstore "coverscope/internal/catalog/store"
	"coverscope/internal/condition"
	evmodels "coverscope/internal/evidence/models"
	evstore "coverscope/internal/evidence/store"
	"coverscope/internal/retrieval"
	"coverscope/pkg/testutil"
)

func newConditionsRouter(t *testing.T) http.Handler {
	t.Helper()

	catalogStore := catstore.NewMemoryStore("rev-1",
		[]catmodels.CanonicalCoverage{
			{Code: "A4200_1", OfficialName: "암진단비(유사암제외)"},
		},
		nil,
	)
	resolver := catalog.NewResolver(catalogStore, nil, slog.Default(), nil)

	corpus := evstore.NewMemoryStore()
	if err := corpus.Add(context.Background(), evmodels.Document{
		CoverageCode: "A4200_1", Insurer: "SAMSUNG",
		DocType: "policy_wording", SourceDoc: "samsung_terms.pdf", Page: 8,
		Text: "암이라 함은 악성신생물을 말합니다",
	}); err != nil {
		t.Fatalf("failed to seed corpus: %v", err)
	}
	retriever := retrieval.NewRetriever(corpus, slog.Default(), nil)
	service := condition.NewService(resolver, retriever, nil, slog.Default(), nil, 0)

	r := chi.NewRouter()
	New(service, slog.Default()).Register(r)
	return r
}

func TestConditionsEndpoint(t *testing.T) {
	router := newConditionsRouter(t)

	rec := testutil.PostJSON(t, router, "/compare/conditions", map[string]any{
		"canonical_coverage_code": "A4200_1",
		"insurers":                []string{"SAMSUNG", "MERITZ"},
		"comparison_aspects":      []string{"definition_scope"},
	})
	testutil.AssertStatus(t, rec, http.StatusOK)

	resp := testutil.DecodeResponse[ConditionsResponse](t, rec)
	if len(resp.Aspects) != 1 || resp.Aspects[0] != "definition_scope" {
		t.Fatalf("expected requested aspect echoed, got %v", resp.Aspects)
	}

	samsung := resp.Results["SAMSUNG"]
	if samsung.Status != "success" {
		t.Fatalf("expected SAMSUNG success, got %q (%q)", samsung.Status, samsung.Reason)
	}
	if len(samsung.Findings) != 1 || samsung.Findings[0].Text != "암이라 함은 악성신생물을 말합니다" {
		t.Fatalf("expected verbatim definition finding, got %+v", samsung.Findings)
	}

	meritz := resp.Results["MERITZ"]
	if meritz.Status != "unknown" || meritz.Reason != "no_authoritative_definition" {
		t.Fatalf("expected MERITZ unknown, got %q/%q", meritz.Status, meritz.Reason)
	}
}

func TestConditionsEndpointDefaultsAllAspects(t *testing.T) {
	router := newConditionsRouter(t)

	rec := testutil.PostJSON(t, router, "/compare/conditions", map[string]any{
		"canonical_coverage_code": "A4200_1",
		"insurers":                []string{"SAMSUNG"},
	})
	testutil.AssertStatus(t, rec, http.StatusOK)

	resp := testutil.DecodeResponse[ConditionsResponse](t, rec)
	if len(resp.Aspects) != len(condition.Aspects) {
		t.Fatalf("expected all aspects, got %v", resp.Aspects)
	}
}

func TestConditionsEndpointUnknownCode(t *testing.T) {
	router := newConditionsRouter(t)

	rec := testutil.PostJSON(t, router, "/compare/conditions", map[string]any{
		"canonical_coverage_code": "Z9999_9",
		"insurers":                []string{"SAMSUNG"},
	})
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	testutil.AssertErrorCode(t, rec, "not_found")
}

func TestConditionsEndpointValidation(t *testing.T) {
	router := newConditionsRouter(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing insurers", map[string]any{"canonical_coverage_code": "A4200_1"}},
		{"unknown aspect", map[string]any{
			"canonical_coverage_code": "A4200_1",
			"insurers":                []string{"SAMSUNG"},
			"comparison_aspects":      []string{"premium_comparison"},
		}},
		{"duplicate aspect", map[string]any{
			"canonical_coverage_code": "A4200_1",
			"insurers":                []string{"SAMSUNG"},
			"comparison_aspects":      []string{"definition_scope", "definition_scope"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.PostJSON(t, router, "/compare/conditions", tc.payload)
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
		})
	}
}

package cleaning_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"cleanstage/internal/cleaning"
	"cleanstage/internal/failures"
)

func validParams() cleaning.Params {
	return cleaning.Params{
		InputArtifact:     "sample.csv:latest",
		OutputArtifact:    "clean_sample.csv",
		OutputType:        "clean_sample",
		OutputDescription: "Data with outliers and null values removed",
		MinPrice:          10,
		MaxPrice:          350,
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*cleaning.Params)
		wantErr string
	}{
		{"valid", func(*cleaning.Params) {}, ""},
		{"inverted range allowed", func(p *cleaning.Params) { p.MinPrice, p.MaxPrice = 100, 20 }, ""},
		{"pinned version", func(p *cleaning.Params) { p.InputArtifact = "sample.csv:v3" }, ""},
		{"blank input", func(p *cleaning.Params) { p.InputArtifact = "  " }, "--input_artifact must not be blank"},
		{"bad reference", func(p *cleaning.Params) { p.InputArtifact = "sample.csv:three" }, "--input_artifact"},
		{"output with directory", func(p *cleaning.Params) { p.OutputArtifact = "out/clean.csv" }, "--output_artifact"},
		{"blank type", func(p *cleaning.Params) { p.OutputType = "" }, "--output_type must not be blank"},
		{"blank description", func(p *cleaning.Params) { p.OutputDescription = "\t" }, "--output_description must not be blank"},
		{"nan min", func(p *cleaning.Params) { p.MinPrice = math.NaN() }, "--min_price must be a finite number"},
		{"infinite max", func(p *cleaning.Params) { p.MaxPrice = math.Inf(1) }, "--max_price must be a finite number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			err := params.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, failures.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestParamsValidateReportsEveryField(t *testing.T) {
	err := cleaning.Params{MinPrice: math.NaN()}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"--input_artifact", "--output_artifact", "--output_type", "--output_description", "--min_price"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %s in %q", field, err.Error())
		}
	}
}

func TestConfigValuesCarriesAllParams(t *testing.T) {
	values := validParams().ConfigValues()
	if len(values) != 6 {
		t.Fatalf("expected six values, got %d", len(values))
	}
	if values["min_price"] != 10.0 || values["input_artifact"] != "sample.csv:latest" {
		t.Fatalf("unexpected values %#v", values)
	}
}

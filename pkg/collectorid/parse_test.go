package collectorid

import "testing"

func TestParseSubsetLettered(t *testing.T) {
	id, err := Parse("TG13/TG30", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "TG13" || id.Shape != ShapeSubsetLettered {
		t.Fatalf("expected TG13 subset-lettered got %s %s", id.Normalized, id.Shape)
	}
	if id.DenominatorPrefix != "TG" || id.Denominator != "30" {
		t.Fatalf("expected denominator TG/30 got %s/%s", id.DenominatorPrefix, id.Denominator)
	}
}

func TestParseSubsetBare(t *testing.T) {
	id, err := Parse("TG13/30", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "TG13" || id.Shape != ShapeSubsetBare || id.Denominator != "30" {
		t.Fatalf("got %s %s denom=%s", id.Normalized, id.Shape, id.Denominator)
	}
}

func TestParseStandardFraction(t *testing.T) {
	id, err := Parse("058/102", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "058" || id.Denominator != "102" || id.Shape != ShapeFraction {
		t.Fatalf("got %s/%s %s", id.Normalized, id.Denominator, id.Shape)
	}
}

func TestParsePromo(t *testing.T) {
	id, err := Parse("SWSH123", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "SWSH123" || id.Shape != ShapePromo {
		t.Fatalf("got %s %s", id.Normalized, id.Shape)
	}
	id2, err := Parse("SWSH-123", 0.9)
	if err != nil || id2.Normalized != "SWSH123" {
		t.Fatalf("dashed promo: got %v %v", id2, err)
	}
}

func TestParseConfusionRepair(t *testing.T) {
	id, err := Parse("O58/1O2", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "058" || id.Denominator != "102" || id.Shape != ShapeFraction {
		t.Fatalf("expected corrected 058/102 got %s/%s %s", id.Normalized, id.Denominator, id.Shape)
	}
}

func TestParseNoBlanketRepairInAlphabeticSegment(t *testing.T) {
	// A pure-alphabetic input has no digits at all and yields no identifier,
	// but must also not be corrupted on the way to that decision.
	if _, err := Parse("HOLO", 0.9); err != ErrNoIdentifier {
		t.Fatalf("expected ErrNoIdentifier got %v", err)
	}
}

func TestParseConfidenceFloor(t *testing.T) {
	if _, err := Parse("058/102", 0.3); err != ErrNoIdentifier {
		t.Fatalf("expected ErrNoIdentifier under floor, got %v", err)
	}
}

func TestParseWhitespaceAndCase(t *testing.T) {
	id, err := Parse(" tg13 / tg30 ", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Normalized != "TG13" || id.Shape != ShapeSubsetLettered {
		t.Fatalf("got %s %s", id.Normalized, id.Shape)
	}
}

func TestParseOpaqueFallback(t *testing.T) {
	id, err := Parse("XX99YY88", 0.9)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Shape != ShapeOpaque || id.Normalized != "XX99YY88" {
		t.Fatalf("got %s %s", id.Normalized, id.Shape)
	}
}

package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load product")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	inner := New(CodeInsufficientStock, "only 1 left")
	outer := fmt.Errorf("add item: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %s", typed.Code())
	}
}

func TestMetadataForDomainCodes(t *testing.T) {
	cases := map[Code]int{
		CodeNoLocation:        http.StatusUnprocessableEntity,
		CodeInsufficientStock: http.StatusConflict,
		CodeDuplicateReturn:   http.StatusConflict,
		Code("UNKNOWN"):       http.StatusInternalServerError,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s: expected status %d got %d", code, status, got)
		}
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeDuplicateReturn, "item already returned")
	if !HasCode(err, CodeDuplicateReturn) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("unexpected match")
	}
	if HasCode(stdErrors.New("plain"), CodeNotFound) {
		t.Fatal("plain errors must not match")
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodePartsMiss, "cell %q not in library %q", "wg_heater", "EBeam-SiN"),
			want: `PARTS_MISS: cell "wg_heater" not in library "EBeam-SiN"`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeIO, fmt.Errorf("permission denied"), "write layout"),
			want: "IO_ERROR: write layout: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeConnection, "no such pin")
	if !Is(err, ErrCodeConnection) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeGeometryConstraint) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeConnection) {
		t.Error("Is should not match plain errors")
	}
}

func TestIsUnwrapsChain(t *testing.T) {
	inner := New(ErrCodeGeometryConstraint, "facings collide")
	outer := fmt.Errorf("connect splitter: %w", inner)
	if !Is(outer, ErrCodeGeometryConstraint) {
		t.Error("Is should unwrap wrapped errors")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodePortLookupMiss, "miss")); got != ErrCodePortLookupMiss {
		t.Errorf("GetCode = %q, want %q", got, ErrCodePortLookupMiss)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePartsMiss, "laser cell unavailable")
	if got := UserMessage(err); got != "laser cell unavailable" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := fmt.Errorf("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

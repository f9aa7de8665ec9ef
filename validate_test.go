package droppings

import (
	"errors"
	"testing"

	"github.com/albertocavalcante/go-droppings/label"
)

func TestValidateVersions(t *testing.T) {
	x := func(validate bool) *ProjectData {
		p := project(t, "org/x", "1.0.0")
		p.ValidateVersion = validate
		return p
	}

	t.Run("mismatch", func(t *testing.T) {
		r := mustRegistry(t,
			RegistryEntry{"x", x(true)},
			RegistryEntry{"y", project(t, "org/y", "3", "org/x@1.1.0")},
		)
		err := ValidateVersions(r)
		if !errors.Is(err, ErrDependencyMismatch) {
			t.Fatalf("ValidateVersions() error = %v, want ErrDependencyMismatch", err)
		}
		var merr *DependencyMismatchError
		if !errors.As(err, &merr) {
			t.Fatalf("error %T is not a *DependencyMismatchError", err)
		}
		want := DependencyMismatchError{
			Project:     label.MustCoordinate("org/y"),
			Dependency:  label.MustCoordinate("org/x"),
			Requested:   "1.1.0",
			Provided:    "1.0.0",
			ProjectName: "y",
			TargetName:  "x",
		}
		if *merr != want {
			t.Errorf("mismatch = %+v, want %+v", *merr, want)
		}
		if got := err.Error(); got != "org/y: org/x 1.1.0 requested but 1.0.0 provided" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("match", func(t *testing.T) {
		r := mustRegistry(t,
			RegistryEntry{"x", x(true)},
			RegistryEntry{"y", project(t, "org/y", "3", "org/x@1.0.0")},
		)
		if err := ValidateVersions(r); err != nil {
			t.Errorf("ValidateVersions() error = %v", err)
		}
	})

	t.Run("validation disabled", func(t *testing.T) {
		r := mustRegistry(t,
			RegistryEntry{"x", x(false)},
			RegistryEntry{"y", project(t, "org/y", "3", "org/x@1.1.0")},
		)
		if err := ValidateVersions(r); err != nil {
			t.Errorf("ValidateVersions() error = %v", err)
		}
	})

	t.Run("external dependencies ignored", func(t *testing.T) {
		r := mustRegistry(t,
			RegistryEntry{"x", x(true)},
			RegistryEntry{"y", project(t, "org/y", "3", "other/x@1.1.0")},
		)
		if err := ValidateVersions(r); err != nil {
			t.Errorf("ValidateVersions() error = %v", err)
		}
	})

	t.Run("first mismatch wins", func(t *testing.T) {
		z := project(t, "org/z", "2")
		z.ValidateVersion = true
		r := mustRegistry(t,
			RegistryEntry{"x", x(true)},
			RegistryEntry{"z", z},
			RegistryEntry{"a", project(t, "org/a", "1", "org/z@1", "org/x@0.9")},
			RegistryEntry{"b", project(t, "org/b", "1", "org/x@0.8")},
		)
		var merr *DependencyMismatchError
		if err := ValidateVersions(r); !errors.As(err, &merr) {
			t.Fatalf("ValidateVersions() error = %v", err)
		}
		if merr.ProjectName != "a" || merr.TargetName != "z" {
			t.Errorf("first mismatch = %s -> %s, want a -> z", merr.ProjectName, merr.TargetName)
		}
	})
}

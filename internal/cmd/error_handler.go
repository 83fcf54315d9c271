package cmd

import (
	"fmt"
	"io"
	"sort"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/logging"
)

// HandleError prints err for the user and returns the process exit code.
// A nil error returns 0 and prints nothing.
func HandleError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	u := newUI()

	le, ok := apperrors.AsLedgerError(err)
	if !ok {
		fmt.Fprintln(w, u.Error(err.Error()))
		return apperrors.ExitCode(err)
	}

	fmt.Fprintln(w, u.Error(le.Error()))
	if len(le.Context) > 0 {
		keys := make([]string, 0, len(le.Context))
		for k := range le.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(w, u.Muted(fmt.Sprintf("  %s: %v", k, le.Context[k])))
		}
	}
	if le.Suggestion != "" {
		fmt.Fprintln(w, u.Muted("  hint: "+le.Suggestion))
	}

	log := logging.Component("cli").WithFields(logging.Fields{
		"category": le.Category,
		"code":     le.Code,
	})
	if verbose && len(le.StackTrace) > 0 {
		log.Debugf("stack:%+v", le.StackTrace)
	}
	return le.ExitCode()
}

func configError(err error) error {
	return apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig, "invalid configuration")
}

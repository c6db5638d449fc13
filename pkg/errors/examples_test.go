package errors_test

import (
	"fmt"
	"net/http"

	"github.com/agentstation/toolmap/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "repository",
		ID:       "octo/missing",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Resource not found")
	}

	// Output: Resource not found
}

// Example_retryDecision shows how request loops decide whether to retry.
func Example_retryDecision() {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusNotFound, http.StatusBadGateway} {
		err := errors.NewAPIError("github", status, http.StatusText(status))
		fmt.Printf("%d retry=%v\n", status, errors.IsRetryable(err))
	}

	// Output:
	// 429 retry=true
	// 404 retry=false
	// 502 retry=true
}

// Example_datasetError shows an auxiliary dataset failure wrapping a parse error.
func Example_datasetError() {
	parseErr := errors.NewParseError("json", "op_rewards.json", "unexpected end of JSON input", nil)
	err := errors.NewDatasetError("op-rewards", "op_rewards.json", parseErr)

	fmt.Println(errors.IsValidationError(err))
	fmt.Println(err)

	// Output:
	// true
	// dataset op-rewards (op_rewards.json): parse error in json file op_rewards.json: unexpected end of JSON input
}

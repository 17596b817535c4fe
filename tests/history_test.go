package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/tactus/tests/testutils"
)

func TestHistoryCLI(t *testing.T) {
	testCase := testutils.Setup()

	testCase.Setup = func(data test.Data, helpers test.Helpers) {
		file := writeWAV(data, helpers, "take.wav", plucked(20, 500))
		db := data.Temp().Path("history.db")

		helpers.Ensure("analyze", "--history", db, file)
		helpers.Ensure("analyze", "--history", db, file)

		data.Labels().Set("db", db)
		data.Labels().Set("file", file)
	}

	testCase.SubTests = []*test.Case{
		{
			Description: "list shows stored analyses",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("history", "list", "--db", data.Labels().Get("db"))
			},
			Expected: func(data test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains(data.Labels().Get("file")),
						expectContains("tempo_bpm"),
					),
				}
			},
		},
		{
			Description: "compare the last two sessions of a file",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("history", "compare", "--db", data.Labels().Get("db"),
					"--file", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("variance_delta_ms"),
				}
			},
		},
		{
			Description: "compare without ids or file fails",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("history", "compare", "--db", data.Labels().Get("db"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}

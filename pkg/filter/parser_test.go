package filter

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	DescribeTable("should build the expression tree",
		func(src, expected string) {
			expr, err := Parse(src)

			Expect(err).NotTo(HaveOccurred())
			Expect(expr.String()).To(Equal(expected))
		},
		Entry("a string comparison", "event_id = 'scanner-command'", `(event_id = "scanner-command")`),
		Entry("a number comparison", "id >= 10", "(id >= 10)"),
		Entry("a float", "id < 2.5", "(id < 2.5)"),
		Entry("a boolean", "accepted = TRUE", "(accepted = true)"),
		Entry("a regex", "message ~ /jam|cover/", "(message ~ /jam|cover/)"),
		Entry("a negated regex", "message !~ /^ok/", "(message !~ /^ok/)"),
		Entry("and binds tighter than or",
			"a = 1 or b = 2 and c = 3",
			"((a = 1) or ((b = 2) and (c = 3)))"),
		Entry("left associative chains",
			"a = 1 and b = 2 and c = 3",
			"(((a = 1) and (b = 2)) and (c = 3))"),
		Entry("parentheses",
			"(a = 1 or b = 2) and c = 3",
			"(((a = 1) or (b = 2)) and (c = 3))"),
		Entry("nested parentheses", "((a = 1))", "(a = 1)"),
	)

	DescribeTable("should reject invalid filters",
		func(src string, position int, message string) {
			_, err := Parse(src)

			Expect(err).To(HaveOccurred())
			var perr *ParseError
			Expect(err).To(BeAssignableToTypeOf(perr))
			perr = err.(*ParseError)
			Expect(perr.Position).To(Equal(position))
			Expect(perr.Message).To(ContainSubstring(message))
		},
		Entry("an empty filter", "   ", 3, "empty filter"),
		Entry("a missing value", "id =", 4, "expected value"),
		Entry("a missing operator", "id 3", 3, "expected operator"),
		Entry("a missing field", "= 3", 0, "expected field name"),
		Entry("an unclosed parenthesis", "(id = 3", 7, `expected ")"`),
		Entry("a trailing token", "id = 3 id", 7, "unexpected"),
		Entry("a dangling and", "id = 3 and", 10, "expected field name"),
		Entry("a regex with an ordering operator", "id > /3/", 5, "only allowed with ~"),
		Entry("a string with a match operator", "message ~ 'jam'", 10, "expects a regex"),
		Entry("an invalid regex", "message ~ /(/", 10, "invalid regex"),
		Entry("an illegal character", "id = 3 | id = 4", 7, "unexpected character"),
	)
})

// answerkey prints the content digest for a multiple-choice answer key,
// for pasting into a question-set document's correct_hash field.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sqlschool/examkit/internal/grading"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: answerkey <option-id>[,<option-id>...]")
		os.Exit(2)
	}
	ids := strings.Split(flag.Arg(0), ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}
	fmt.Println(grading.AnswerDigest(ids))
}

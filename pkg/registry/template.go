package registry

import (
	"bytes"
	"fmt"
	"text/template"
)

// moduleTemplate is the skeleton written for a new tool. The dispatcher
// looks up {{.Name}}_desc and {{.Name}}_help at run time and tolerates
// either being absent.
const moduleTemplate = `#include <stdio.h>

/* Optional one-line description shown in the command listing:
 * const char *{{.Name}}_desc = "Description";
 */

const char *{{.Name}}_help =
    "Usage: {{.Name}} [args]\n"
    "Description: {{.Name}} tool.\n"
    "Options:\n"
    "  -h, --help  Show this help.\n";

int {{.Name}}_main(int argc, char **argv) {
    (void)argc; (void)argv;
    printf("Running {{.Name}}\n");
    return 0;
}
`

var moduleTmpl = template.Must(template.New("module").Parse(moduleTemplate))

// renderModule returns the skeleton source for name. name must already be valid.
func renderModule(name string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Name string
	}{
		Name: name,
	}
	if err := moduleTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

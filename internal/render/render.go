package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Payload renders the template at templatePath against the metadata tree and
// writes the result to outPath, creating the file if absent and truncating it
// otherwise. It returns the number of bytes written.
//
// The output is a transient working file consumed later in the same run; it
// is never read back across runs.
func Payload(templatePath string, context map[string]any, outPath string) (int, error) {
	tmpl, err := template.New(filepath.Base(templatePath)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFiles(templatePath)
	if err != nil {
		return 0, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return 0, fmt.Errorf("render template: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create payload: %w", err)
	}
	defer out.Close()

	written, err := out.Write(buf.Bytes())
	if err != nil {
		return written, fmt.Errorf("write payload: %w", err)
	}
	return written, nil
}

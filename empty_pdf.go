package url2pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// writeEmptyPDF writes a minimal PDF 1.4 document whose page tree has no
// pages: a catalog, an empty /Pages node and an info dictionary.
func writeEmptyPDF(w io.Writer, producer string) error {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
		fmt.Sprintf("<< /Producer (%s) /Creator (%s) >>", escapePDFString(producer), escapePDFString(producer)),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	// Each xref entry is exactly 20 bytes including the two-byte EOL.
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	_, err := w.Write(buf.Bytes())
	return err
}

// escapePDFString escapes the characters that are special in PDF literal strings.
func escapePDFString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}

package transform

import (
	"bytes"
	"strings"
	"testing"

	"github.com/uimorph/uimorph/internal/rules"
)

func migrateTSX(t *testing.T, source string) *Result {
	t.Helper()
	rs, err := rules.Builtin()
	if err != nil {
		t.Fatalf("loading builtin ruleset: %v", err)
	}
	result, err := Migrate([]byte(source), TSX, rs)
	if err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return result
}

func TestMigrateRenameAndProps(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        []string
		wantAbsent  []string
		wantChanged bool
	}{
		{
			name: "variant expands to type",
			input: `import { Button } from 'react-bootstrap';

export const Go = () => <Button variant="primary" size="lg">Go</Button>;
`,
			want:        []string{`type="primary"`, `size="large"`, `from 'antd'`},
			wantAbsent:  []string{"react-bootstrap", "variant"},
			wantChanged: true,
		},
		{
			name: "danger variant expands to two attributes",
			input: `import { Button } from 'react-bootstrap';

export const Del = () => <Button variant="danger">Delete</Button>;
`,
			want:        []string{`type="primary" danger={true}`},
			wantChanged: true,
		},
		{
			name: "unmapped enum value passes through",
			input: `import { Button } from 'react-bootstrap';

export const Big = () => <Button size="giant">Big</Button>;
`,
			want:        []string{`size="giant"`, `from 'antd'`},
			wantChanged: true,
		},
		{
			name: "dropped prop disappears",
			input: `import { Button } from 'react-bootstrap';

export const A = () => <Button active size="sm">A</Button>;
`,
			want:        []string{`<Button size="small">`},
			wantAbsent:  []string{"active"},
			wantChanged: true,
		},
		{
			name: "value map renames and translates",
			input: `import { Alert } from 'react-bootstrap';

export const Note = () => <Alert variant="danger">Careful</Alert>;
`,
			want:        []string{`type="error"`, `showIcon={true}`},
			wantAbsent:  []string{"variant"},
			wantChanged: true,
		},
		{
			name: "component renamed to different target",
			input: `import { Badge } from 'react-bootstrap';

export const New = () => <Badge bg="success" pill>new</Badge>;
`,
			want:        []string{`<Tag color="green">new</Tag>`, `import { Tag } from 'antd';`},
			wantAbsent:  []string{"Badge", "pill"},
			wantChanged: true,
		},
		{
			name: "plain rename keeps dynamic value",
			input: `import { Modal } from 'react-bootstrap';

export const Dlg = ({ visible, close }) => <Modal show={visible} onHide={close} />;
`,
			want:        []string{`open={visible}`, `onCancel={close}`},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := migrateTSX(t, tt.input)
			if result.Changed != tt.wantChanged {
				t.Fatalf("Changed = %v, want %v\noutput:\n%s", result.Changed, tt.wantChanged, result.Output)
			}
			output := string(result.Output)
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(output, absent) {
					t.Errorf("output still contains %q:\n%s", absent, output)
				}
			}
		})
	}
}

func TestMigrateNoSourceImportIsByteIdentical(t *testing.T) {
	source := `import { Button } from './ui/button';

export const A = () => <Button variant="primary">local</Button>;
`
	result := migrateTSX(t, source)
	if result.Changed {
		t.Fatalf("Changed = true for file without source-library imports")
	}
	if !bytes.Equal(result.Output, []byte(source)) {
		t.Errorf("output differs from input:\n%s", result.Output)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	source := `import { Button, Alert } from 'react-bootstrap';
import 'bootstrap/dist/css/bootstrap.min.css';

export const Page = () => (
  <div>
    <Alert variant="warning">heads up</Alert>
    <Button variant="primary" size="sm">Save</Button>
  </div>
);
`
	first := migrateTSX(t, source)
	if !first.Changed {
		t.Fatalf("first run did not change the file")
	}

	second := migrateTSX(t, string(first.Output))
	if second.Changed {
		t.Fatalf("second run changed an already-migrated file:\n%s", second.Output)
	}
	if !bytes.Equal(second.Output, first.Output) {
		t.Errorf("second run output differs from first run output")
	}
}

func TestMigrateAliasedImport(t *testing.T) {
	source := `import { Button as BsButton } from 'react-bootstrap';

const Button = () => <button type="button" />;

export const A = () => (
  <div>
    <BsButton size="lg">Go</BsButton>
    <Button />
  </div>
);
`
	result := migrateTSX(t, source)
	output := string(result.Output)

	if !strings.Contains(output, `<Button size="large">Go</Button>`) {
		t.Errorf("aliased element not rewritten:\n%s", output)
	}
	if !strings.Contains(output, "<Button />") {
		t.Errorf("local Button element was touched:\n%s", output)
	}
	if strings.Contains(output, "BsButton") || strings.Contains(output, "react-bootstrap") {
		t.Errorf("source import survived:\n%s", output)
	}
	if !strings.Contains(output, `import { Button } from 'antd';`) {
		t.Errorf("target import missing:\n%s", output)
	}
}

func TestMigrateNamespaceImport(t *testing.T) {
	source := `import * as RB from 'react-bootstrap';

export const Busy = () => <RB.Spinner animation="border" size="sm" />;
`
	result := migrateTSX(t, source)
	output := string(result.Output)

	if !strings.Contains(output, `<Spin size="small" />`) {
		t.Errorf("namespace element not rewritten:\n%s", output)
	}
	if !strings.Contains(output, "import * as RB from 'react-bootstrap';") {
		t.Errorf("namespace import must be retained:\n%s", output)
	}
	if !strings.Contains(output, `import { Spin } from 'antd';`) {
		t.Errorf("target import missing:\n%s", output)
	}
}

func TestMigrateUnmappedComponentRetainsImport(t *testing.T) {
	source := `import { Button, Carousel } from 'react-bootstrap';

export const A = () => (
  <div>
    <Carousel fade />
    <Button variant="link">more</Button>
  </div>
);
`
	result := migrateTSX(t, source)
	output := string(result.Output)

	if !strings.Contains(output, "import { Carousel } from 'react-bootstrap';") {
		t.Errorf("unmapped specifier was pruned:\n%s", output)
	}
	if !strings.Contains(output, "<Carousel fade />") {
		t.Errorf("unmapped element was touched:\n%s", output)
	}
	if !strings.Contains(output, `import { Button } from 'antd';`) {
		t.Errorf("target import missing:\n%s", output)
	}

	found := false
	for _, d := range result.Diagnostics {
		if d.Code == CodeUnmappedComponent && d.Canonical == "Carousel" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing unmapped-component diagnostic, got %v", result.Diagnostics)
	}
}

func TestMigrateDynamicValueSkipped(t *testing.T) {
	source := `import { Button } from 'react-bootstrap';

export const A = ({ kind }) => <Button variant={kind}>Go</Button>;
`
	result := migrateTSX(t, source)
	output := string(result.Output)

	if !strings.Contains(output, "variant={kind}") {
		t.Errorf("dynamic value was guessed:\n%s", output)
	}
	if !strings.Contains(output, `from 'antd'`) {
		t.Errorf("element should still migrate:\n%s", output)
	}

	found := false
	for _, d := range result.Diagnostics {
		if d.Code == CodeDynamicValueSkipped {
			found = true
		}
	}
	if !found {
		t.Errorf("missing dynamic-value-skipped diagnostic, got %v", result.Diagnostics)
	}
}

func TestMigrateStyleMerge(t *testing.T) {
	t.Run("class tokens become style object", func(t *testing.T) {
		source := `import { Button } from 'react-bootstrap';

export const A = () => <Button className="mt-2 text-center">Hi</Button>;
`
		output := string(migrateTSX(t, source).Output)
		if !strings.Contains(output, `style={{ marginTop: '0.5rem', textAlign: 'center' }}`) {
			t.Errorf("derived style object missing:\n%s", output)
		}
		if strings.Contains(output, "className") {
			t.Errorf("emptied className attribute survived:\n%s", output)
		}
	})

	t.Run("explicit style key wins over derived", func(t *testing.T) {
		source := `import { Alert } from 'react-bootstrap';

export const Note = () => <Alert variant="danger" className="mt-3 custom" style={{ marginTop: 0 }}>Careful</Alert>;
`
		output := string(migrateTSX(t, source).Output)
		if !strings.Contains(output, "style={{ marginTop: 0 }}") {
			t.Errorf("explicit style was overwritten:\n%s", output)
		}
		if !strings.Contains(output, `className="custom"`) {
			t.Errorf("unmatched token not preserved:\n%s", output)
		}
	})

	t.Run("derived entries merge into existing object", func(t *testing.T) {
		source := `import { Button } from 'react-bootstrap';

export const A = () => <Button className="mb-1" style={{ color: 'red' }}>Hi</Button>;
`
		output := string(migrateTSX(t, source).Output)
		if !strings.Contains(output, `style={{ color: 'red', marginBottom: '0.25rem' }}`) {
			t.Errorf("derived entry not merged:\n%s", output)
		}
		if strings.Contains(output, "className") {
			t.Errorf("emptied className attribute survived:\n%s", output)
		}
	})

	t.Run("dynamic className left alone", func(t *testing.T) {
		source := `import { Button } from 'react-bootstrap';

export const A = ({ cls }) => <Button className={cls}>Hi</Button>;
`
		output := string(migrateTSX(t, source).Output)
		if !strings.Contains(output, "className={cls}") {
			t.Errorf("dynamic className was touched:\n%s", output)
		}
	})
}

func TestMigrateStructural(t *testing.T) {
	t.Run("graft and unwrap", func(t *testing.T) {
		source := `import { Card } from 'react-bootstrap';

export const Profile = () => (
  <Card>
    <Card.Header>Profile</Card.Header>
    <Card.Body>
      <p>Hello</p>
    </Card.Body>
  </Card>
);
`
		result := migrateTSX(t, source)
		output := string(result.Output)

		if !strings.Contains(output, `<Card title="Profile">`) {
			t.Errorf("header not grafted onto parent:\n%s", output)
		}
		for _, gone := range []string{"Card.Header", "Card.Body", "react-bootstrap"} {
			if strings.Contains(output, gone) {
				t.Errorf("output still contains %q:\n%s", gone, output)
			}
		}
		if !strings.Contains(output, "<p>Hello</p>") {
			t.Errorf("unwrapped children lost:\n%s", output)
		}
		if !strings.Contains(output, `import { Card } from 'antd';`) {
			t.Errorf("target import missing:\n%s", output)
		}
	})

	t.Run("markup children graft as fragment", func(t *testing.T) {
		source := `import { Card } from 'react-bootstrap';

export const P = () => (
  <Card>
    <Card.Header><b>Hi</b> there</Card.Header>
    body
  </Card>
);
`
		output := string(migrateTSX(t, source).Output)
		if !strings.Contains(output, "title={<><b>Hi</b> there</>}") {
			t.Errorf("markup children not wrapped:\n%s", output)
		}
	})

	t.Run("missing parent is a recoverable no-op", func(t *testing.T) {
		source := `import { Card } from 'react-bootstrap';

export const Orphan = () => (
  <div>
    <Card.Header>lost</Card.Header>
  </div>
);
`
		result := migrateTSX(t, source)
		if result.Changed {
			t.Fatalf("orphan structural element changed the file:\n%s", result.Output)
		}
		found := false
		for _, d := range result.Diagnostics {
			if d.Code == CodeStructuralTargetMissing && d.Canonical == "Card.Header" {
				found = true
			}
		}
		if !found {
			t.Errorf("missing structural-target-missing diagnostic, got %v", result.Diagnostics)
		}
	})
}

func TestMigrateStylesheetImportRemoved(t *testing.T) {
	source := `import { Button } from 'react-bootstrap';
import 'bootstrap/dist/css/bootstrap.min.css';

export const A = () => <Button>Go</Button>;
`
	output := string(migrateTSX(t, source).Output)
	if strings.Contains(output, "bootstrap.min.css") {
		t.Errorf("stylesheet import survived:\n%s", output)
	}
	if !strings.Contains(output, `import { Button } from 'antd';`) {
		t.Errorf("target import missing:\n%s", output)
	}
}

func TestMigrateDeepImport(t *testing.T) {
	source := `import Button from 'react-bootstrap/Button';

export const A = () => <Button variant="link">more</Button>;
`
	output := string(migrateTSX(t, source).Output)
	if !strings.Contains(output, `type="link"`) {
		t.Errorf("deep-imported component not rewritten:\n%s", output)
	}
	if strings.Contains(output, "react-bootstrap") {
		t.Errorf("deep import survived:\n%s", output)
	}
	if !strings.Contains(output, `import { Button } from 'antd';`) {
		t.Errorf("target import missing:\n%s", output)
	}
}

func TestMigrateMergesIntoExistingTargetImport(t *testing.T) {
	source := `import { Alert } from 'react-bootstrap';
import { Space } from 'antd';

export const A = () => (
  <Space>
    <Alert variant="info">hi</Alert>
  </Space>
);
`
	output := string(migrateTSX(t, source).Output)
	if !strings.Contains(output, "import { Space, Alert } from 'antd';") {
		t.Errorf("target symbol not merged into existing import:\n%s", output)
	}
	if strings.Contains(output, "react-bootstrap") {
		t.Errorf("source import survived:\n%s", output)
	}
}

func TestLanguageForFile(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.tsx", TSX},
		{"app.jsx", TSX},
		{"util.ts", TypeScript},
		{"util.js", JavaScript},
		{"legacy.cjs", JavaScript},
		{"mod.mjs", JavaScript},
	}
	for _, tt := range tests {
		if got := LanguageForFile(tt.path); got != tt.want {
			t.Errorf("LanguageForFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDumpTree(t *testing.T) {
	sexp, err := DumpTree([]byte("const x = 1;"), JavaScript)
	if err != nil {
		t.Fatalf("DumpTree() error: %v", err)
	}
	if !strings.Contains(sexp, "lexical_declaration") {
		t.Errorf("unexpected tree: %s", sexp)
	}
}

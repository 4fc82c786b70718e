package render

// A table definition expands one marker into a markdown table with one
// row per user-entered instance of the category.
type tableDef struct {
	marker  string
	prefix  string   // answer-key prefix whose set count sizes the table
	headers []string
	keys    []string // indexed answer keys, one per column
}

type templateDef struct {
	text   string
	tables []tableDef
}

var methodTable = tableDef{
	marker:  "%METHODS%",
	prefix:  "method",
	headers: []string{"ID", "Name", "Description", "Formulas"},
	keys:    []string{"method/entity", "method/name", "method/description", "method/formulas"},
}

var softwareTable = tableDef{
	marker:  "%SOFTWARE%",
	prefix:  "software",
	headers: []string{"ID", "Name", "Description", "Programming Languages"},
	keys:    []string{"software/entity", "software/name", "software/description", "software/languages"},
}

var inputTable = tableDef{
	marker:  "%INPUTS%",
	prefix:  "input",
	headers: []string{"ID", "Name", "Identifier"},
	keys:    []string{"input/entity", "input/name", "input/identifier"},
}

var outputTable = tableDef{
	marker:  "%OUTPUTS%",
	prefix:  "output",
	headers: []string{"ID", "Name", "Identifier"},
	keys:    []string{"output/entity", "output/name", "output/identifier"},
}

var mathematicalTemplate = templateDef{
	tables: []tableDef{methodTable, softwareTable, inputTable, outputTable},
	text: `# {{workflow/title}}

## Problem Statement

{{workflow/objective}}

**Research disciplines:** {{discipline/list}}

**Related publication:** {{publication/main}}

## Mathematical Model

| ID | Name | Description | Main Subject | Formulas |
| -- | -- | -- | -- | -- |
| {{model/entity}} | {{model/name}} | {{model/description}} | {{model/subject}} | {{model/formulas}} |

## Process Information

### Methods

%METHODS%

### Software

%SOFTWARE%

### Input Data

%INPUTS%

### Output Data

%OUTPUTS%
`,
}

var experimentalTemplate = templateDef{
	tables: []tableDef{methodTable, softwareTable, inputTable, outputTable},
	text: `# {{workflow/title}}

## Problem Statement

{{workflow/objective}}

**Research disciplines:** {{discipline/list}}

**Related publication:** {{publication/main}}

## Experimental Setup

### Methods

%METHODS%

### Software

%SOFTWARE%

## Data

### Input Data

%INPUTS%

### Output Data

%OUTPUTS%
`,
}

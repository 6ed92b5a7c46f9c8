package dispatch

// Entry is one row of the dispatch table: a tool name and the C symbols the
// dispatcher references for it. Desc and Help are optional at link time.
type Entry struct {
	Name string
	Main string
	Desc string
	Help string
}

// Table is the ordered dispatch table, one Entry per tool.
type Table []Entry

// NewTable builds the dispatch table for tools, preserving their order.
// Names are assumed valid; Synthesize checks them before calling it.
func NewTable(tools []string) Table {
	table := make(Table, 0, len(tools))
	for _, name := range tools {
		table = append(table, Entry{
			Name: name,
			Main: MainSymbol(name),
			Desc: DescSymbol(name),
			Help: HelpSymbol(name),
		})
	}
	return table
}

// Names returns the tool names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Name
	}
	return names
}

// MainSymbol is the entry function a tool module must define.
func MainSymbol(name string) string { return name + "_main" }

// DescSymbol is the optional one-line description string.
func DescSymbol(name string) string { return name + "_desc" }

// HelpSymbol is the optional help text string.
func HelpSymbol(name string) string { return name + "_help" }

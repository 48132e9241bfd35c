package framework

// Context is passed to every test case in a sequence. Values stored by one test case can be
// retrieved by the following ones, which makes it possible to chain steps, for instance creating
// a resource and deleting it again. Clues are short notes about decisions a test case made; they
// are attached to that test case's result and cleared before the next test case starts.
//
// Relying on stored values makes test cases depend on execution order and on each other's
// outcome, so use them only when necessary.
type Context struct {
	values map[string]string
	clues  []string
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Store saves a value for subsequent test cases.
func (c *Context) Store(key, value string) {
	c.values[key] = value
}

// Retrieve returns a value saved by Store.
func (c *Context) Retrieve(key string) (string, bool) {
	value, ok := c.values[key]
	return value, ok
}

// AddClue records a note explaining which branch the test case took, e.g. "no token stored,
// using anonymous access".
func (c *Context) AddClue(clue string) {
	c.clues = append(c.clues, clue)
}

// Clues returns the notes added since the current test case started.
func (c *Context) Clues() []string {
	return append([]string(nil), c.clues...)
}

func (c *Context) resetClues() {
	c.clues = nil
}

package suite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/httpwire"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// BodySource can be used as the header name in a store entry to store the whole response body.
const BodySource = "@body"

var placeholder = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

type declaredTest struct {
	framework.Defaults
	spec        TestSpec
	waitForLogs ldvalue.OptionalInt
	maxDuration ldvalue.OptionalInt
}

func newDeclaredTest(spec TestSpec) *declaredTest {
	return &declaredTest{
		spec:        spec,
		waitForLogs: ldvalue.NewOptionalIntFromPointer(spec.WaitForLogsMillis),
		maxDuration: ldvalue.NewOptionalIntFromPointer(spec.MaxDurationMillis),
	}
}

func (d *declaredTest) Name() string { return d.spec.Name }

func (d *declaredTest) WaitForLogsMillis() int {
	return d.waitForLogs.OrElse(d.Defaults.WaitForLogsMillis())
}

func (d *declaredTest) MaxAcceptableDurationMillis() int {
	return d.maxDuration.OrElse(d.Defaults.MaxAcceptableDurationMillis())
}

func (d *declaredTest) PrepareRequest(config framework.Values, ctx *framework.Context) (httpwire.Request, error) {
	x := expander{config: config, ctx: ctx}
	method := d.spec.Method
	if method == "" {
		method = "GET"
	}
	req := httpwire.NewRequest(strings.ToUpper(method), x.expand(d.spec.Path))
	for _, h := range d.spec.Headers {
		req = req.WithHeader(h.Name, x.expand(h.Value))
	}
	if d.spec.Body != nil {
		req = req.WithBody(x.expand(*d.spec.Body))
	}
	if err := x.err(); err != nil {
		return httpwire.Request{}, err
	}
	return req, nil
}

func (d *declaredTest) Verify(config framework.Values, resp httpwire.Response, ctx *framework.Context) error {
	x := expander{config: config, ctx: ctx}
	expect := d.spec.Expect
	if expect.Status != nil {
		if err := framework.AssertStatus(resp, *expect.Status); err != nil {
			return err
		}
	}
	for _, h := range expect.Headers {
		if err := framework.AssertHeader(resp, h.Name, x.expand(h.Value)); err != nil {
			return err
		}
	}
	for _, text := range expect.BodyContains {
		if err := framework.AssertBodyContains(resp, x.expand(text)); err != nil {
			return err
		}
	}
	if err := x.err(); err != nil {
		return err
	}
	return d.store(resp, ctx)
}

func (d *declaredTest) store(resp httpwire.Response, ctx *framework.Context) error {
	for key, source := range d.spec.Store {
		if source == BodySource {
			ctx.Store(key, resp.Body)
			continue
		}
		if !resp.Headers.Has(source) {
			return framework.Failf("expected header %s in the response, to store it as %s", source, key)
		}
		ctx.Store(key, resp.Headers.Get(source))
	}
	return nil
}

// expander replaces ${name} with a stored value or, if there is none, a param. Stored values
// come first so that a test can override a default from the params.
type expander struct {
	config  framework.Values
	ctx     *framework.Context
	missing []string
}

func (x *expander) expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if value, ok := x.ctx.Retrieve(name); ok {
			x.ctx.AddClue(fmt.Sprintf("using stored value for %s", name))
			return value
		}
		if value, ok := x.config[name]; ok {
			return value
		}
		x.missing = append(x.missing, name)
		return m
	})
}

func (x *expander) err() error {
	if len(x.missing) == 0 {
		return nil
	}
	return fmt.Errorf("no param or stored value for %s", strings.Join(x.missing, ", "))
}

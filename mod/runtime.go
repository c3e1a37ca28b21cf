package mod

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/entity"
	"github.com/milk9111/systematic/event"
)

// A handler is any top-level function whose name starts with "on" or "pre"
// followed by an upper-case letter. Its name is the event it listens to.
var handlerPattern = regexp.MustCompile(`(?m)^((?:on|pre)[A-Z][A-Za-z0-9_]*)\s*:=\s*func\b`)

// script is one compiled .tengo file. The top level of a script runs again on
// every dispatch, so state that must survive between events lives in the
// state map handed to each handler.
type script struct {
	mod      string
	name     string
	handlers []string

	base     *tengo.Compiled
	compiled *tengo.Compiled
	depth    int

	eng   *engine.Engine
	api   *tengo.ImmutableMap
	state *tengo.Map

	unregister []func()
}

// discoverHandlers lists handler names in source order without duplicates.
func discoverHandlers(src []byte) []string {
	var names []string
	for _, m := range handlerPattern.FindAllSubmatch(src, -1) {
		name := string(m[1])
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// handlerAPI wraps the Go api map with helpers that must call back into the
// script, which Go functions cannot do.
const handlerAPI = `__handler_api := func(api) {
	m := {}
	for k, v in api {
		m[k] = v
	}
	m.for_each_tile = func(fn) {
		for t in api.tiles() {
			fn(t[0], t[1], t[2], t[3])
		}
	}
	return m
}
`

func dispatchSource(handlers []string) string {
	var b strings.Builder
	b.WriteString(handlerAPI)
	for _, h := range handlers {
		fmt.Fprintf(&b, "if __event == %q {\n\t__result = %s(__handler_api(__api), __state, __player, __args)\n}\n", h, h)
	}
	return b.String()
}

func compileScript(eng *engine.Engine, modName, name string, src []byte) (*script, error) {
	handlers := discoverHandlers(src)

	full := string(src) + "\n" + dispatchSource(handlers)
	s := tengo.NewScript([]byte(full))
	_ = s.Add("__event", "")
	_ = s.Add("__api", map[string]any{})
	_ = s.Add("__state", map[string]any{})
	_ = s.Add("__player", map[string]any{})
	_ = s.Add("__args", map[string]any{})
	_ = s.Add("__result", nil)

	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	base, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("mod: compile %s/%s: %w", modName, name, err)
	}

	sc := &script{
		mod:      modName,
		name:     name,
		handlers: handlers,
		base:     base,
		compiled: base.Clone(),
		eng:      eng,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	sc.api = buildAPI(eng, sc)
	return sc, nil
}

// attach registers one hub listener per handler.
func (s *script) attach() {
	for _, h := range s.handlers {
		name := h
		_, off := s.eng.On(event.Kind(name), func(ev event.Event) event.Result {
			return s.dispatch(name, ev)
		})
		s.unregister = append(s.unregister, off)
	}
}

func (s *script) detach() {
	for _, off := range s.unregister {
		off()
	}
	s.unregister = nil
}

// dispatch runs handler for ev. It returns Cancel only when the handler
// returned exactly false. Script errors are logged and count as Continue.
func (s *script) dispatch(handler string, ev event.Event) event.Result {
	c := s.compiled
	if s.depth > 0 {
		// A handler triggered an event this script also handles.
		c = s.base.Clone()
	}
	s.depth++
	defer func() { s.depth-- }()

	p := s.eng.Player()
	player := playerObject(p)
	before := player.Copy().(*tengo.Map)
	args := eventArgs(ev)

	if err := s.run(c, handler, player, args); err != nil {
		s.eng.Logger().Printf("mod: %s/%s %s error: %v", s.mod, s.name, handler, err)
		return event.Continue
	}
	applyPlayer(p, before, player)

	if b, ok := c.Get("__result").Value().(bool); ok && !b {
		return event.Cancel
	}
	return event.Continue
}

func (s *script) run(c *tengo.Compiled, handler string, player, args *tengo.Map) error {
	if err := c.Set("__event", handler); err != nil {
		return err
	}
	if err := c.Set("__api", s.api); err != nil {
		return err
	}
	if err := c.Set("__state", s.state); err != nil {
		return err
	}
	if err := c.Set("__player", player); err != nil {
		return err
	}
	if err := c.Set("__args", args); err != nil {
		return err
	}
	if err := c.Set("__result", nil); err != nil {
		return err
	}
	return c.Run()
}

func playerObject(p *entity.Player) *tengo.Map {
	fields := &tengo.Map{Value: make(map[string]tengo.Object, len(p.Fields))}
	for k, v := range p.Fields {
		if obj, err := tengo.FromInterface(v); err == nil {
			fields.Value[k] = obj
		}
	}
	return &tengo.Map{Value: map[string]tengo.Object{
		"x":           &tengo.Float{Value: p.X},
		"y":           &tengo.Float{Value: p.Y},
		"vx":          &tengo.Float{Value: p.VX},
		"vy":          &tengo.Float{Value: p.VY},
		"width":       &tengo.Float{Value: p.Width},
		"height":      &tengo.Float{Value: p.Height},
		"onGround":    boolObject(p.OnGround),
		"onWallLeft":  boolObject(p.OnWallLeft),
		"onWallRight": boolObject(p.OnWallRight),
		"fields":      fields,
	}}
}

// applyPlayer writes back the player keys a handler changed. Comparing
// against before keeps writes made by nested dispatches.
func applyPlayer(p *entity.Player, before, after *tengo.Map) {
	for key, dst := range map[string]*float64{"x": &p.X, "y": &p.Y, "vx": &p.VX, "vy": &p.VY} {
		if !changed(before, after, key) {
			continue
		}
		if v, ok := tengo.ToFloat64(after.Value[key]); ok {
			*dst = v
		}
	}
	if changed(before, after, "onGround") {
		if b, ok := after.Value["onGround"].(*tengo.Bool); ok {
			p.OnGround = !b.IsFalsy()
		}
	}

	was, _ := before.Value["fields"].(*tengo.Map)
	now, ok := after.Value["fields"].(*tengo.Map)
	if !ok || was == nil {
		return
	}
	if p.Fields == nil {
		p.Fields = entity.Fields{}
	}
	for k, v := range now.Value {
		if old, ok := was.Value[k]; !ok || !old.Equals(v) {
			p.Fields.Set(k, tengo.ToInterface(v))
		}
	}
	for k := range was.Value {
		if _, ok := now.Value[k]; !ok {
			p.Fields.Delete(k)
		}
	}
}

func changed(before, after *tengo.Map, key string) bool {
	a, b := before.Value[key], after.Value[key]
	if a == nil || b == nil {
		return a != b
	}
	return !a.Equals(b)
}

func eventArgs(ev event.Event) *tengo.Map {
	v := map[string]tengo.Object{"event": &tengo.String{Value: string(ev.Kind())}}
	switch e := ev.(type) {
	case event.WallEvent:
		v["tileX"], v["tileY"] = intObject(e.TileX), intObject(e.TileY)
	case event.CeilingEvent:
		v["tileX"], v["tileY"] = intObject(e.TileX), intObject(e.TileY)
	case event.GroundEvent:
		v["tileX"], v["tileY"] = intObject(e.TileX), intObject(e.TileY)
		v["layer"], v["tile"] = intObject(e.Layer), intObject(int(e.Tile))
	case event.BounceEvent:
		v["tileX"], v["tileY"] = intObject(e.TileX), intObject(e.TileY)
		v["tile"] = intObject(int(e.Tile))
		v["strength"] = &tengo.Float{Value: e.Strength}
	case event.TilePlacedEvent:
		v["x"], v["y"] = &tengo.Float{Value: e.X}, &tengo.Float{Value: e.Y}
		v["layer"], v["tile"] = intObject(e.Layer), intObject(int(e.Tile))
	case event.MouseEvent:
		v["x"], v["y"] = &tengo.Float{Value: e.X}, &tengo.Float{Value: e.Y}
		v["button"] = intObject(e.Button)
	case event.KeyEvent:
		v["key"] = &tengo.String{Value: e.Key}
	case event.InputEvent:
		keys := &tengo.Map{Value: make(map[string]tengo.Object, len(e.Keys))}
		for k, down := range e.Keys {
			keys.Value[k] = boolObject(down)
		}
		v["keys"] = keys
	case event.Custom:
		arr := &tengo.Array{Value: make([]tengo.Object, 0, len(e.Args))}
		for _, a := range e.Args {
			obj, err := tengo.FromInterface(a)
			if err != nil {
				obj = tengo.UndefinedValue
			}
			arr.Value = append(arr.Value, obj)
		}
		v["args"] = arr
	}
	return &tengo.Map{Value: v}
}

func intObject(i int) tengo.Object {
	return &tengo.Int{Value: int64(i)}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

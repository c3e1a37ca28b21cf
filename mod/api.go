package mod

import (
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/lighting"
)

// buildAPI exposes the engine to one script as the immutable map passed to
// every handler as its first argument.
func buildAPI(eng *engine.Engine, s *script) *tengo.ImmutableMap {
	fns := map[string]tengo.CallableFunc{
		"key": func(args ...tengo.Object) (tengo.Object, error) {
			name, err := argString(args, 0, 1, "key")
			if err != nil {
				return nil, err
			}
			return boolObject(eng.Keys().Down(name)), nil
		},
		"tile_size": func(args ...tengo.Object) (tengo.Object, error) {
			return &tengo.Float{Value: eng.TileSize()}, nil
		},
		"get_tile_at": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 3, "get_tile_at")
			if err != nil {
				return nil, err
			}
			return intObject(int(eng.TileAt(c[0], c[1], c[2]))), nil
		},
		"set_tile_at": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 4, "set_tile_at")
			if err != nil {
				return nil, err
			}
			return boolObject(eng.SetTileAt(c[0], c[1], c[2], level.TileID(c[3]))), nil
		},
		"get_tile_properties": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 3, "get_tile_properties")
			if err != nil {
				return nil, err
			}
			return tengo.FromInterface(map[string]any(eng.TileProperties(c[0], c[1], c[2])))
		},
		"set_tile_properties": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 4 {
				return nil, tengo.ErrWrongNumArguments
			}
			c, err := argInts(args[:3], 3, "set_tile_properties")
			if err != nil {
				return nil, err
			}
			props, ok := tengo.ToInterface(args[3]).(map[string]any)
			if !ok {
				return nil, &tengo.ErrInvalidArgumentType{Name: "props", Expected: "map", Found: args[3].TypeName()}
			}
			eng.SetTileProperties(c[0], c[1], c[2], level.Props(props))
			return tengo.UndefinedValue, nil
		},
		"find_tiles": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 2, "find_tiles")
			if err != nil {
				return nil, err
			}
			found := eng.FindTiles(level.TileID(c[0]), c[1])
			arr := &tengo.Array{Value: make([]tengo.Object, 0, len(found))}
			for _, xy := range found {
				arr.Value = append(arr.Value, &tengo.Array{Value: []tengo.Object{intObject(xy[0]), intObject(xy[1])}})
			}
			return arr, nil
		},
		"fill_rect": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 6, "fill_rect")
			if err != nil {
				return nil, err
			}
			eng.FillRect(c[0], c[1], c[2], c[3], c[4], level.TileID(c[5]))
			return tengo.UndefinedValue, nil
		},
		"add_light": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			m, ok := tengo.ToInterface(args[0]).(map[string]any)
			if !ok {
				return nil, &tengo.ErrInvalidArgumentType{Name: "light", Expected: "map", Found: args[0].TypeName()}
			}
			l := lighting.Light{Intensity: 1}
			l.ID, _ = m["id"].(string)
			l.X = number(m["x"])
			l.Y = number(m["y"])
			l.Radius = number(m["radius"])
			if _, ok := m["intensity"]; ok {
				l.Intensity = number(m["intensity"])
			}
			colorName, _ := m["color"].(string)
			l.Color, _ = common.ParseColor(colorName)
			return &tengo.String{Value: eng.AddLight(l).ID}, nil
		},
		"move_light": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, 3, "move_light")
			if err != nil {
				return nil, err
			}
			x, y, err := argXY(args[1:])
			if err != nil {
				return nil, err
			}
			return boolObject(eng.MoveLight(id, x, y)), nil
		},
		"remove_light": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, 1, "remove_light")
			if err != nil {
				return nil, err
			}
			return boolObject(eng.RemoveLight(id)), nil
		},
		"clear_lights": func(args ...tengo.Object) (tengo.Object, error) {
			eng.ClearLights()
			return tengo.UndefinedValue, nil
		},
		"get_player_position": func(args ...tengo.Object) (tengo.Object, error) {
			x, y := eng.PlayerPosition()
			return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}, nil
		},
		"set_player_position": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := argXY(args)
			if err != nil {
				return nil, err
			}
			eng.SetPlayerPosition(x, y)
			return tengo.UndefinedValue, nil
		},
		"trigger": func(args ...tengo.Object) (tengo.Object, error) {
			ev, err := customEvent(args)
			if err != nil {
				return nil, err
			}
			return boolObject(eng.TriggerCancelable(ev)), nil
		},
		"emit_particles": func(args ...tengo.Object) (tengo.Object, error) {
			name, err := argString(args, 0, 3, "emit_particles")
			if err != nil {
				return nil, err
			}
			x, y, err := argXY(args[1:])
			if err != nil {
				return nil, err
			}
			return boolObject(eng.EmitParticles(name, x, y)), nil
		},
		"animate_tile": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 5 {
				return nil, tengo.ErrWrongNumArguments
			}
			c, err := argInts(args[:3], 3, "animate_tile")
			if err != nil {
				return nil, err
			}
			arr, ok := args[3].(*tengo.Array)
			if !ok {
				return nil, &tengo.ErrInvalidArgumentType{Name: "frames", Expected: "array", Found: args[3].TypeName()}
			}
			frames := make([]level.TileID, 0, len(arr.Value))
			for _, f := range arr.Value {
				id, ok := tengo.ToInt(f)
				if !ok {
					return nil, &tengo.ErrInvalidArgumentType{Name: "frames", Expected: "int", Found: f.TypeName()}
				}
				frames = append(frames, level.TileID(id))
			}
			fps, ok := tengo.ToFloat64(args[4])
			if !ok {
				return nil, &tengo.ErrInvalidArgumentType{Name: "fps", Expected: "float", Found: args[4].TypeName()}
			}
			return boolObject(eng.AnimateTile(c[0], c[1], c[2], frames, fps)), nil
		},
		"get_tile_def": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 1, "get_tile_def")
			if err != nil {
				return nil, err
			}
			def, ok := eng.TileDef(level.TileID(c[0]))
			if !ok {
				return tengo.UndefinedValue, nil
			}
			sprite := make([]any, 0, len(def.Sprite))
			for _, row := range def.Sprite {
				cells := make([]any, len(row))
				for i, v := range row {
					cells[i] = v
				}
				sprite = append(sprite, cells)
			}
			return tengo.FromInterface(map[string]any{
				"id":         int(def.ID),
				"name":       def.Name,
				"category":   def.Category,
				"sprite":     sprite,
				"properties": def.Properties,
			})
		},
		"get_tile_property_schema": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 1, "get_tile_property_schema")
			if err != nil {
				return nil, err
			}
			fields := eng.TilePropertySchema(level.TileID(c[0]))
			arr := &tengo.Array{Value: make([]tengo.Object, 0, len(fields))}
			for _, f := range fields {
				obj, err := tengo.FromInterface(fieldMap(f))
				if err != nil {
					return nil, err
				}
				arr.Value = append(arr.Value, obj)
			}
			return arr, nil
		},
		"remove_tile_property_schema": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 1, "remove_tile_property_schema")
			if err != nil {
				return nil, err
			}
			return boolObject(eng.RemoveTilePropertySchema(level.TileID(c[0]))), nil
		},
		"tiles": func(args ...tengo.Object) (tengo.Object, error) {
			arr := &tengo.Array{}
			eng.ForEachTile(func(x, y, layer int, id level.TileID) {
				arr.Value = append(arr.Value, &tengo.Array{Value: []tengo.Object{
					intObject(x), intObject(y), intObject(layer), intObject(int(id)),
				}})
			})
			return arr, nil
		},
		"get_current_level": func(args ...tengo.Object) (tengo.Object, error) {
			return intObject(eng.CurrentLevel()), nil
		},
		"set_current_level": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argInts(args, 1, "set_current_level")
			if err != nil {
				return nil, err
			}
			return boolObject(eng.SetCurrentLevel(c[0])), nil
		},
		"export_level": func(args ...tengo.Object) (tengo.Object, error) {
			data, err := eng.ExportLevelJSON()
			if err != nil {
				return &tengo.Error{Value: &tengo.String{Value: err.Error()}}, nil
			}
			return &tengo.String{Value: string(data)}, nil
		},
		"import_level": func(args ...tengo.Object) (tengo.Object, error) {
			data, err := argString(args, 0, 1, "import_level")
			if err != nil {
				return nil, err
			}
			if err := eng.ImportLevelJSON([]byte(data)); err != nil {
				eng.Logger().Printf("mod: %s/%s: import_level: %v", s.mod, s.name, err)
				return tengo.FalseValue, nil
			}
			return tengo.TrueValue, nil
		},
		"log": func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, objectAsString(a))
			}
			eng.Logger().Printf("mod: %s/%s: %s", s.mod, s.name, strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		},
	}

	values := make(map[string]tengo.Object, len(fns))
	for name, fn := range fns {
		values[name] = &tengo.UserFunction{Name: name, Value: fn}
	}
	return &tengo.ImmutableMap{Value: values}
}

// customEvent builds the payload for trigger(name, args...). Engine kinds
// carry typed payloads and cannot be raised from a script.
func customEvent(args []tengo.Object) (event.Custom, error) {
	if len(args) < 1 {
		return event.Custom{}, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return event.Custom{}, &tengo.ErrInvalidArgumentType{Name: "event", Expected: "string", Found: args[0].TypeName()}
	}
	kind := event.Kind(name)
	if kind.Builtin() {
		return event.Custom{}, &tengo.ErrInvalidArgumentType{Name: "event", Expected: "custom event name", Found: name}
	}
	ev := event.Custom{Type: kind, Args: make([]any, 0, len(args)-1)}
	for _, a := range args[1:] {
		ev.Args = append(ev.Args, tengo.ToInterface(a))
	}
	return ev, nil
}

func argString(args []tengo.Object, i, want int, fn string) (string, error) {
	if len(args) != want {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := args[i].(*tengo.String)
	if !ok {
		return "", &tengo.ErrInvalidArgumentType{Name: fn, Expected: "string", Found: args[i].TypeName()}
	}
	return s.Value, nil
}

func argInts(args []tengo.Object, want int, fn string) ([]int, error) {
	if len(args) != want {
		return nil, tengo.ErrWrongNumArguments
	}
	out := make([]int, want)
	for i, a := range args {
		v, ok := toInt(a)
		if !ok {
			return nil, &tengo.ErrInvalidArgumentType{Name: fn, Expected: "int", Found: a.TypeName()}
		}
		out[i] = v
	}
	return out, nil
}

func argXY(args []tengo.Object) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, tengo.ErrWrongNumArguments
	}
	x, ok := tengo.ToFloat64(args[0])
	if !ok {
		return 0, 0, &tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[0].TypeName()}
	}
	y, ok := tengo.ToFloat64(args[1])
	if !ok {
		return 0, 0, &tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[1].TypeName()}
	}
	return x, y, nil
}

// toInt accepts ints and floats; floats are floored so pixel maths in
// scripts can index tiles directly.
func toInt(o tengo.Object) (int, bool) {
	switch v := o.(type) {
	case *tengo.Int:
		return int(v.Value), true
	case *tengo.Float:
		return common.FloorDiv(v.Value, 1), true
	}
	return 0, false
}

func fieldMap(f level.Field) map[string]any {
	m := map[string]any{
		"key":     f.Key,
		"label":   f.Label,
		"type":    string(f.Type),
		"default": f.Default,
	}
	for k, v := range map[string]*float64{"min": f.Min, "max": f.Max, "step": f.Step} {
		if v != nil {
			m[k] = *v
		}
	}
	if len(f.Options) > 0 {
		opts := make([]any, len(f.Options))
		for i, o := range f.Options {
			opts[i] = o
		}
		m["options"] = opts
	}
	return m
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj.(*tengo.String); ok {
		return s.Value
	}
	return obj.String()
}

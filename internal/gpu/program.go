//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal"
)

// ProgramError reports a shader program that could not be built. Log holds
// the compiler diagnostics verbatim.
type ProgramError struct {
	// Stage is "compile", "validate", "link" or "create".
	Stage string
	Log   string
	Err   error
}

func (e *ProgramError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("gpu: shader %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("gpu: shader %s failed:\n%s", e.Stage, e.Log)
}

func (e *ProgramError) Unwrap() error { return e.Err }

// Binding is a resource binding slot.
type Binding struct {
	Group, Binding uint32
}

// Locations is the attribute and uniform table of a program.
type Locations struct {
	VertexEntry   string
	FragmentEntry string

	// Attributes maps vertex input names to shader locations.
	Attributes map[string]uint32

	// Uniforms maps uniform variable names to their bind slots.
	Uniforms map[string]Binding
}

// Attribute returns the location of the named vertex input.
func (l Locations) Attribute(name string) (uint32, bool) {
	loc, ok := l.Attributes[name]
	return loc, ok
}

// Uniform returns the bind slot of the named uniform.
func (l Locations) Uniform(name string) (Binding, bool) {
	b, ok := l.Uniforms[name]
	return b, ok
}

// Program is a compiled vertex+fragment shader pair with its reflected
// location table.
type Program struct {
	device hal.Device
	shader hal.ShaderModule

	Locations Locations
}

// BuildProgram compiles a WGSL module holding exactly one vertex and one
// fragment entry point and creates its shader module on device.
//
// The source goes through the naga front end first so that a failure
// carries line:column diagnostics instead of an opaque driver message.
func BuildProgram(device hal.Device, label, source string) (*Program, error) {
	module, err := compileModule(source)
	if err != nil {
		return nil, err
	}

	locs, err := Reflect(module)
	if err != nil {
		return nil, err
	}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, &ProgramError{Stage: "create", Err: err}
	}

	slogger().Debug("gpu: program built", "label", label,
		"vertex", locs.VertexEntry, "fragment", locs.FragmentEntry,
		"attributes", len(locs.Attributes), "uniforms", len(locs.Uniforms))

	return &Program{device: device, shader: shader, Locations: locs}, nil
}

// compileModule parses, lowers and validates source.
func compileModule(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, &ProgramError{Stage: "compile", Log: err.Error(), Err: err}
	}

	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, &ProgramError{Stage: "compile", Log: diagnostics(err), Err: err}
	}

	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, &ProgramError{Stage: "validate", Log: err.Error(), Err: err}
	}
	if len(verrs) > 0 {
		lines := make([]string, len(verrs))
		for i, v := range verrs {
			lines[i] = v.Error()
		}
		return nil, &ProgramError{Stage: "validate", Log: strings.Join(lines, "\n"), Err: verrs[0]}
	}
	return module, nil
}

// diagnostics formats err with source context when the front end provides it.
func diagnostics(err error) string {
	var all interface{ FormatAll() string }
	if errors.As(err, &all) {
		return all.FormatAll()
	}
	var one interface{ FormatWithContext() string }
	if errors.As(err, &one) {
		return one.FormatWithContext()
	}
	return err.Error()
}

// Reflect builds the location table of a validated module. It fails with a
// "link" ProgramError unless the module has both a vertex and a fragment
// entry point.
func Reflect(module *ir.Module) (Locations, error) {
	locs := Locations{
		Attributes: make(map[string]uint32),
		Uniforms:   make(map[string]Binding),
	}

	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			if locs.VertexEntry != "" {
				continue
			}
			locs.VertexEntry = ep.Name
			collectInputs(module, ep.Function.Arguments, locs.Attributes)
		case ir.StageFragment:
			if locs.FragmentEntry == "" {
				locs.FragmentEntry = ep.Name
			}
		}
	}
	if locs.VertexEntry == "" || locs.FragmentEntry == "" {
		return Locations{}, &ProgramError{
			Stage: "link",
			Log:   fmt.Sprintf("missing entry point: vertex=%q fragment=%q", locs.VertexEntry, locs.FragmentEntry),
		}
	}

	for _, gv := range module.GlobalVariables {
		if gv.Space == ir.SpaceUniform && gv.Binding != nil {
			locs.Uniforms[gv.Name] = Binding{Group: gv.Binding.Group, Binding: gv.Binding.Binding}
		}
	}
	return locs, nil
}

// collectInputs records @location bindings of vertex arguments, descending
// into struct-typed arguments.
func collectInputs(module *ir.Module, args []ir.FunctionArgument, out map[string]uint32) {
	for _, arg := range args {
		if loc, ok := location(arg.Binding); ok {
			out[arg.Name] = loc
			continue
		}
		if int(arg.Type) >= len(module.Types) {
			continue
		}
		st, ok := module.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, m := range st.Members {
			if loc, ok := location(m.Binding); ok {
				out[m.Name] = loc
			}
		}
	}
}

func location(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	lb, ok := (*b).(ir.LocationBinding)
	if !ok {
		return 0, false
	}
	return lb.Location, true
}

// Require checks that the program exposes the named attributes and uniforms.
func (p *Program) Require(attributes []string, uniforms []string) error {
	var missing []string
	for _, a := range attributes {
		if _, ok := p.Locations.Attribute(a); !ok {
			missing = append(missing, "attribute "+a)
		}
	}
	for _, u := range uniforms {
		if _, ok := p.Locations.Uniform(u); !ok {
			missing = append(missing, "uniform "+u)
		}
	}
	if len(missing) > 0 {
		return &ProgramError{Stage: "link", Log: "missing " + strings.Join(missing, ", ")}
	}
	return nil
}

// Shader returns the shader module.
func (p *Program) Shader() hal.ShaderModule {
	return p.shader
}

// Release destroys the shader module. Safe to call more than once.
func (p *Program) Release() {
	if p.shader != nil && p.device != nil {
		p.device.DestroyShaderModule(p.shader)
	}
	p.shader = nil
}

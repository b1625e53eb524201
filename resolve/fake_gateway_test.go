package resolve

import (
	"fmt"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/cartfile"
	"github.com/cartforge/cartforge/version"
)

// fakeGateway is a fixed, in-memory RepositoryGateway used to drive the
// resolver against scripted version/manifest/reference scenarios without
// touching any VCS.
type fakeGateway struct {
	versions  map[string][]version.Pin
	manifests map[string]string // "project@pin" -> manifest text
	refs      map[string]version.Pin
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		versions:  make(map[string][]version.Pin),
		manifests: make(map[string]string),
		refs:      make(map[string]version.Pin),
	}
}

func (g *fakeGateway) withVersions(project string, pins ...string) *fakeGateway {
	vs := make([]version.Pin, len(pins))
	for i, p := range pins {
		vs[i] = version.Pin(p)
	}
	g.versions[project] = vs
	return g
}

func (g *fakeGateway) withManifest(project, pin, manifest string) *fakeGateway {
	g.manifests[project+"@"+pin] = manifest
	return g
}

func (g *fakeGateway) withRef(project, ref, pin string) *fakeGateway {
	g.refs[project+"#"+ref] = version.Pin(pin)
	return g
}

func (g *fakeGateway) Versions(project cartforge.Identifier) ([]version.Pin, error) {
	return g.versions[project.Name()], nil
}

func (g *fakeGateway) Manifest(project cartforge.Identifier, pin version.Pin) (*cartfile.Manifest, error) {
	text, ok := g.manifests[project.Name()+"@"+string(pin)]
	if !ok {
		return nil, nil
	}
	return cartfile.ParseManifest([]byte(text), project.Name())
}

func (g *fakeGateway) ResolveReference(project cartforge.Identifier, ref string) (version.Pin, error) {
	pin, ok := g.refs[project.Name()+"#"+ref]
	if !ok {
		return "", cartforge.New(cartforge.RepositoryCheckoutFailed, "%s: no such reference %q", project, ref)
	}
	return pin, nil
}

func mustParseManifest(text string) *cartfile.Manifest {
	m, err := cartfile.ParseManifest([]byte(text), "Cartfile")
	if err != nil {
		panic(fmt.Sprintf("test manifest failed to parse: %v", err))
	}
	return m
}

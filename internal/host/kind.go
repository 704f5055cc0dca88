package host

// NodeKind classifies host nodes. The set is closed: anything the exporter
// does not translate is KindUnsupported.
type NodeKind int

const (
	KindUnsupported NodeKind = iota
	KindTransform
	KindMesh
	KindCamera
	KindPointLight
	KindSpotLight
	KindDirectionalLight
	KindAreaLight
	KindAmbientLight
	KindMaterial    // generic layered material
	KindShadingNode // renderer shading node (bsdf, edf, surface shader)
	KindFile        // file texture
	KindLambert
	KindBlinn
	KindPhong
	KindSurfaceShader
	KindEnvironment
)

var kindNames = map[NodeKind]string{
	KindUnsupported:      "unsupported",
	KindTransform:        "transform",
	KindMesh:             "mesh",
	KindCamera:           "camera",
	KindPointLight:       "pointLight",
	KindSpotLight:        "spotLight",
	KindDirectionalLight: "directionalLight",
	KindAreaLight:        "areaLight",
	KindAmbientLight:     "ambientLight",
	KindMaterial:         "ms_appleseed_material",
	KindShadingNode:      "ms_appleseed_shading_node",
	KindFile:             "file",
	KindLambert:          "lambert",
	KindBlinn:            "blinn",
	KindPhong:            "phong",
	KindSurfaceShader:    "surfaceShader",
	KindEnvironment:      "ms_environment",
}

var kindsByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// ParseKind maps a host type name to a NodeKind.
func ParseKind(typeName string) NodeKind {
	if k, ok := kindsByName[typeName]; ok {
		return k
	}
	return KindUnsupported
}

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unsupported"
}

// IsLight reports whether k is any light type, supported or not.
func (k NodeKind) IsLight() bool {
	switch k {
	case KindPointLight, KindSpotLight, KindDirectionalLight, KindAreaLight, KindAmbientLight:
		return true
	}
	return false
}

// IsStandardMaterial reports whether k is a host built-in material.
func (k NodeKind) IsStandardMaterial() bool {
	switch k {
	case KindLambert, KindBlinn, KindPhong, KindSurfaceShader:
		return true
	}
	return false
}

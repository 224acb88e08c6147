// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gltf parses glTF 2.0 assets, both the JSON form with
// external or embedded buffers and the binary GLB container, into the
// typed document the DAS compiler lowers from.
package gltf

import (
	"github.com/g3n/das/uri"
)

// GLTF is the root object for a glTF asset.
type GLTF struct {
	ExtensionsUsed     []string               // Names of glTF extensions used somewhere in this asset. Not required.
	ExtensionsRequired []string               // Names of glTF extensions required to properly load this asset. Not required.
	Accessors          []Accessor             // An array of accessors. Not required.
	Animations         []Animation            // An array of keyframe animations. Not required.
	Asset              Asset                  // Metadata about the glTF asset. Required.
	Buffers            []Buffer               // An array of buffers. Not required.
	BufferViews        []BufferView           // An array of bufferViews. Not required.
	Cameras            []Camera               // An array of cameras. Not required.
	Images             []Image                // An array of images. Not required.
	Materials          []Material             // An array of materials. Not required.
	Meshes             []Mesh                 // An array of meshes. Not required.
	Nodes              []Node                 // An array of nodes. Not required.
	Samplers           []Sampler              // An array of samplers. Not required.
	Scene              *int                   // The index of the default scene. Not required.
	Scenes             []Scene                // An array of scenes. Not required.
	Skins              []Skin                 // An array of skins. Not required.
	Textures           []Texture              // An array of textures. Not required.
	Extensions         map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras             interface{}            // Application-specific data. Not required.

	path     string        // File path for resources.
	data     []byte        // Binary file chunk data.
	resolver *uri.Resolver // Buffer and image URI resolver.
}

// Accessor is a typed view into a BufferView.
type Accessor struct {
	BufferView    *int                   // The index of the buffer view. Not required.
	ByteOffset    *int                   // The offset relative to the start of the BufferView in bytes. Not required. Default is 0.
	ComponentType int                    // The data type of components in the attribute. Required.
	Normalized    bool                   // Specifies whether integer data values should be normalized. Not required.
	Count         int                    // The number of attributes referenced by this accessor. Required.
	Type          string                 // Specifies if the attribute is a scalar, vector or matrix. Required.
	Max           []float32              // Maximum value of each component in this attribute. Not required.
	Min           []float32              // Minimum value of each component in this attribute. Not required.
	Sparse        *Sparse                // Sparse storage of attributes that deviate from their initialization value. Not required.
	Name          string                 // The user-defined name of this object. Not required.
	Extensions    map[string]interface{} // Dictionary object with extension specific objects. Not required.
	Extras        interface{}            // Application-specific data. Not required.
}

// Animation is a keyframe animation.
type Animation struct {
	Channels   []Channel              // An array of channels. Required.
	Samplers   []AnimationSampler     // An array of samplers combining input and output accessors with an interpolation algorithm. Required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// AnimationSampler combines input and output accessors with an
// interpolation algorithm to define a keyframe graph.
type AnimationSampler struct {
	Input         int                    // The index of an accessor containing keyframe input values, e.g. time. Required.
	Interpolation string                 // Interpolation algorithm. Not required. Default is "LINEAR".
	Output        int                    // The index of an accessor containing keyframe output values. Required.
	Extensions    map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras        interface{}            // Application-specific data. Not required.
}

// Asset contains metadata about the glTF asset.
type Asset struct {
	Copyright  string                 // A copyright message suitable for display to credit the content creator. Not required.
	Generator  string                 // Tool that generated this glTF model. Not required.
	Version    string                 // The glTF version that this asset targets. Required.
	MinVersion string                 // The minimum glTF version that this asset targets. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Buffer points to binary geometry, animation, or skins.
type Buffer struct {
	Uri        string                 // The URI of the buffer. Not required.
	ByteLength int                    // The length of the buffer in bytes. Required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.

	cache []byte // Cached buffer data.
}

// BufferView is a view into a buffer generally representing a subset of the buffer.
type BufferView struct {
	Buffer     int                    // The index of the buffer. Required.
	ByteOffset *int                   // The offset into the buffer, in bytes. Not required. Default is 0.
	ByteLength int                    // The length of the buffer view, in bytes. Required.
	ByteStride *int                   // The stride, in bytes. Not required.
	Target     *int                   // The target that the GPU buffer should be bound to. Not required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Camera is a camera's projection.
type Camera struct {
	Orthographic *Orthographic          // Properties to create an orthographic projection matrix. Not required.
	Perspective  *Perspective           // Properties to create a perspective projection matrix. Not required.
	Type         string                 // Specifies if the camera uses a perspective or orthographic projection. Required.
	Name         string                 // The user-defined name of this object. Not required.
	Extensions   map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras       interface{}            // Application-specific data. Not required.
}

// Channel targets an animation's sampler at a node's property.
type Channel struct {
	Sampler    int                    // The index of a sampler in this animation used to compute the value for the target. Required.
	Target     Target                 // The index of the node and TRS property to target. Required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Image data used to create a texture.
// Image can be referenced by URI or bufferView index. MimeType is
// required in the latter case.
type Image struct {
	Uri        string                 // The URI of the image. Not required.
	MimeType   string                 // The image's MIME type. Not required.
	BufferView *int                   // The index of the bufferView that contains the image. Not required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Material describes the material appearance of a primitive.
type Material struct {
	Name                 string                 // The user-defined name of this object. Not required.
	PbrMetallicRoughness *PbrMetallicRoughness  // Metallic-roughness material model parameters. Not required.
	NormalTexture        *NormalTextureInfo     // The normal map texture. Not required.
	EmissiveTexture      *TextureInfo           // The emissive map texture. Not required.
	EmissiveFactor       *[3]float32            // The emissive color of the material. Not required.
	AlphaMode            string                 // The alpha rendering mode of the material. Not required. Default is OPAQUE.
	AlphaCutoff          float32                // The alpha cutoff value of the material. Not required. Default is 0.5.
	DoubleSided          bool                   // Specifies whether the material is double sided. Not required.
	Extensions           map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras               interface{}            // Application-specific data. Not required.
}

// Mesh is a set of primitives to be rendered.
type Mesh struct {
	Primitives []Primitive            // An array of primitives, each defining geometry to be rendered with a material. Required.
	Weights    []float32              // Array of weights to be applied to the morph targets. Not required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Node is a node in the node hierarchy.
// A node can have either a matrix or any combination of
// translation/rotation/scale (TRS) properties.
type Node struct {
	Camera      *int                   // Index of the camera referenced by this node. Not required.
	Children    []int                  // The indices of this node's children. Not required.
	Skin        *int                   // The index of the skin referenced by this node. Not required.
	Matrix      *[16]float32           // Floating point 4x4 transformation matrix in column-major order. Not required.
	Mesh        *int                   // The index of the mesh in this node. Not required.
	Rotation    *[4]float32            // The node's unit quaternion rotation in the order (x, y, z, w). Not required.
	Scale       *[3]float32            // The node's non-uniform scale. Not required.
	Translation *[3]float32            // The node's translation. Not required.
	Weights     []float32              // The weights of the instantiated morph target. Not required.
	Name        string                 // The user-defined name of this object. Not required.
	Extensions  map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras      interface{}            // Application-specific data. Not required.
}

// NormalTextureInfo is a reference to a normal map texture.
type NormalTextureInfo struct {
	Index      int                    // The index of the texture. Required.
	TexCoord   int                    // The set index of texture's TEXCOORD attribute. Not required.
	Scale      float32                // The scalar multiplier applied to each normal vector. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Orthographic holds properties to create an orthographic projection matrix.
type Orthographic struct {
	Xmag       float32                // The horizontal magnification of the view. Required.
	Ymag       float32                // The vertical magnification of the view. Required.
	Zfar       float32                // The distance to the far clipping plane. Required.
	Znear      float32                // The distance to the near clipping plane. Required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// PbrMetallicRoughness is a set of parameter values defining the
// metallic-roughness material model.
type PbrMetallicRoughness struct {
	BaseColorFactor          *[4]float32            // The material's base color factor. Not required.
	BaseColorTexture         *TextureInfo           // The base color texture. Not required.
	MetallicFactor           *float32               // The metalness of the material. Not required.
	RoughnessFactor          *float32               // The roughness of the material. Not required.
	MetallicRoughnessTexture *TextureInfo           // The metallic-roughness texture. Not required.
	Extensions               map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras                   interface{}            // Application-specific data. Not required.
}

// Perspective holds properties to create a perspective projection matrix.
type Perspective struct {
	AspectRatio *float32               // The aspect ratio of the field of view. Not required.
	Yfov        float32                // The vertical field of view in radians. Required.
	Zfar        *float32               // The distance to the far clipping plane. Not required.
	Znear       float32                // The distance to the near clipping plane. Required.
	Extensions  map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras      interface{}            // Application-specific data. Not required.
}

// Primitive represents geometry to be rendered with the given material.
type Primitive struct {
	Attributes map[string]int         // Maps mesh attribute semantics to accessor indices. Required.
	Indices    *int                   // The index of the accessor that contains the indices. Not required.
	Material   *int                   // The index of the material to apply to this primitive. Not required.
	Mode       *int                   // The type of primitives to render. Not required. Default is 4 (TRIANGLES).
	Targets    []map[string]int       // An array of morph targets mapping attributes to their deviations.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Sampler represents a texture sampler with filtering and wrapping modes.
type Sampler struct {
	MagFilter  *int                   // Magnification filter. Not required.
	MinFilter  *int                   // Minification filter. Not required.
	WrapS      *int                   // s coordinate wrapping mode. Not required. Default is 10497 (REPEAT).
	WrapT      *int                   // t coordinate wrapping mode. Not required. Default is 10497 (REPEAT).
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Scene contains root nodes.
type Scene struct {
	Nodes      []int                  // The indices of the root nodes. Not required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Skin holds joints and matrices defining a skin.
type Skin struct {
	InverseBindMatrices *int                   // The index of the accessor containing the 4x4 inverse-bind matrices. Not required.
	Skeleton            *int                   // The index of the node used as a skeleton root. Not required.
	Joints              []int                  // Indices of skeleton nodes, used as joints in this skin. Required.
	Name                string                 // The user-defined name of this object. Not required.
	Extensions          map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras              interface{}            // Application-specific data. Not required.
}

// Sparse storage of attributes that deviate from their initialization value.
type Sparse struct {
	Count      int                    // Number of entries stored in the sparse array. Required.
	Indices    []int                  // Index array pointing to deviating accessor attributes. Required.
	Values     []int                  // Array storing the displaced accessor attributes. Required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Target represents the index of the node and TRS property that an
// animation channel targets.
type Target struct {
	Node       int                    // The index of the node to target. Not required.
	Path       string                 // The name of the node's TRS property to modify, or "weights". Required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Texture represents a texture and its sampler.
type Texture struct {
	Sampler    *int                   // The index of the sampler used by this texture. Not required.
	Source     int                    // The index of the image used by this texture. Not required.
	Name       string                 // The user-defined name of this object. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// TextureInfo is a reference to a texture.
type TextureInfo struct {
	Index      int                    // The index of the texture. Required.
	TexCoord   int                    // The set index of texture's TEXCOORD attribute. Not required.
	Extensions map[string]interface{} // Dictionary object with extension-specific objects. Not required.
	Extras     interface{}            // Application-specific data. Not required.
}

// Primitive types.
const (
	POINTS         = 0
	LINES          = 1
	LINE_LOOP      = 2
	LINE_STRIP     = 3
	TRIANGLES      = 4
	TRIANGLE_STRIP = 5
	TRIANGLE_FAN   = 6
)

// Possible componentType values.
const (
	BYTE           = 5120
	UNSIGNED_BYTE  = 5121
	SHORT          = 5122
	UNSIGNED_SHORT = 5123
	UNSIGNED_INT   = 5125
	FLOAT          = 5126
)

// Attribute element types.
const (
	SCALAR = "SCALAR"
	VEC2   = "VEC2"
	VEC3   = "VEC3"
	VEC4   = "VEC4"
	MAT2   = "MAT2"
	MAT3   = "MAT3"
	MAT4   = "MAT4"
)

// TypeSizes maps an attribute element type to the number of components it contains.
var TypeSizes = map[string]int{
	SCALAR: 1,
	VEC2:   2,
	VEC3:   3,
	VEC4:   4,
	MAT2:   4,
	MAT3:   9,
	MAT4:   16,
}

// ComponentSize returns the byte size of one component of the
// specified KHRONOS component type, or 0 when unknown.
func ComponentSize(componentType int) int {

	switch componentType {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	}
	return 0
}

// GLB binary container framing.
type GLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type GLBChunk struct {
	Length uint32
	Type   uint32
}

const (
	GLBMagic = 0x46546C67
	GLBJson  = 0x4E4F534A
	GLBBin   = 0x004E4942
)

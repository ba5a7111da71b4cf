package renderer

// The vertex stage derives everything from the flat sample index: grid
// position, normalized [-1, 1] coordinates and the height fetched from
// the data texture. uZoomLevel decimates the fetch when zoomed far out
// so distant frames do not shimmer.
const vertexShaderSource = `
#version 430 core

layout (location = 0) in uint aVertexID;

uniform mat4 uRotation;
uniform mat4 uProjection;
uniform ivec2 uGridSize;
uniform uint uZoomLevel;
uniform sampler2D uHeight;

out vec2 vGridPos;
flat out uvec2 vSample;

void main() {
    uint x = aVertexID % uint(uGridSize.x);
    uint y = aVertexID / uint(uGridSize.x);
    vSample = uvec2(x, y);

    uint stride = 1u << uZoomLevel;
    ivec2 fetchPos = ivec2((x / stride) * stride, (y / stride) * stride);
    float h = texelFetch(uHeight, fetchPos, 0).r;

    float px = 2.0 * float(x) / float(uGridSize.x - 1) - 1.0;
    float py = 1.0 - 2.0 * float(y) / float(uGridSize.y - 1);
    vGridPos = vec2(float(x), float(y));

    gl_Position = uProjection * uRotation * vec4(px, py, h - 0.5, 1.0);
}
`

// pickCommon carries the shared fragment-side declarations: the pick
// attachment output and the storage buffers of the value readback. The
// fragment whose pixel cell matches the uploaded cursor writes its
// source coordinate and raw data value into the output buffer. The
// match compares integer cells: gl_FragCoord sits at pixel centers
// (c + 0.5) while the cursor buffer holds the integer pixel
// coordinate, so a center-distance test would sit exactly on the
// boundary and never fire.
const pickCommon = `
layout (location = 1) out uvec2 pickOut;

layout (std430, binding = 0) readonly buffer CursorBuffer {
    vec2 cursorPos;
};

layout (std430, binding = 1) writeonly buffer PickOutput {
    float pickX;
    float pickY;
    float pickValue;
};

uniform int uPickEnabled;
uniform vec2 uValueRange;

void writePick(uvec2 samplePos, float normalized) {
    pickOut = samplePos;
    if (uPickEnabled == 1 &&
        ivec2(gl_FragCoord.xy) == ivec2(cursorPos)) {
        pickX = float(samplePos.x);
        pickY = float(samplePos.y);
        pickValue = uValueRange.x + normalized * (uValueRange.y - uValueRange.x);
    }
}
`

const heightFragmentSource = `
#version 430 core

in vec2 vGridPos;
flat in uvec2 vSample;

uniform sampler2D uHeight;
uniform sampler2D uAmplitude;
uniform sampler2D uOverlay;
uniform ivec2 uGridSize;

layout (location = 0) out vec4 fragColor;
` + pickCommon + `

// Blue over low ground through green to red peaks.
vec3 colormap(float t) {
    vec3 low = vec3(0.09, 0.11, 0.48);
    vec3 mid = vec3(0.10, 0.62, 0.36);
    vec3 high = vec3(0.84, 0.24, 0.14);
    return t < 0.5 ? mix(low, mid, t * 2.0) : mix(mid, high, t * 2.0 - 1.0);
}

void main() {
    ivec2 texel = ivec2(vGridPos);
    float h = texelFetch(uHeight, texel, 0).r;
    vec3 color = colormap(h);

    vec4 overlay = texelFetch(uOverlay, texel, 0);
    color = mix(color, overlay.rgb, overlay.a);

    fragColor = vec4(color, 1.0);
    writePick(vSample, h);
}
`

const amplitudeFragmentSource = `
#version 430 core

in vec2 vGridPos;
flat in uvec2 vSample;

uniform sampler2D uHeight;
uniform sampler2D uAmplitude;
uniform sampler2D uOverlay;
uniform ivec2 uGridSize;

layout (location = 0) out vec4 fragColor;
` + pickCommon + `

void main() {
    ivec2 texel = ivec2(vGridPos);
    float a = texelFetch(uAmplitude, texel, 0).r;
    vec3 color = vec3(a);

    vec4 overlay = texelFetch(uOverlay, texel, 0);
    color = mix(color, overlay.rgb, overlay.a);

    fragColor = vec4(color, 1.0);
    writePick(vSample, texelFetch(uHeight, texel, 0).r);
}
`

package renderer

// The height function below must stay in step with terrain.HeightParams.Height:
// CPU height queries and collision read the same surface the GPU draws.
const terrainVertexShader = `#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

uniform bool  uDisplace;
uniform uint  uSeed;
uniform int   uOctaves;
uniform float uNoiseScale;
uniform float uNoiseAmplitude;
uniform float uRippleAmplitude;
uniform float uRippleFrequency;
uniform float uMaxDist;
uniform float uSeaFloor;

out vec3  vNormal;
out vec3  vWorldPos;
out float vHeight;
out vec2  vUV;
out float vFogDepth;

uint latticeHash(uint x, uint z, uint seed) {
    uint h = (x * 0x8da6b343u) ^ (z * 0xd8163841u) ^ (seed * 0xcb1ab31fu);
    h ^= h >> 16;
    h *= 0x7feb352du;
    h ^= h >> 15;
    h *= 0x846ca68bu;
    h ^= h >> 16;
    return h;
}

float lattice(ivec2 p) {
    return float(latticeHash(uint(p.x), uint(p.y), uSeed) >> 8) / 16777216.0;
}

float valueNoise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = p - i;
    ivec2 c = ivec2(i);

    float a = lattice(c);
    float b = lattice(c + ivec2(1, 0));
    float d = lattice(c + ivec2(0, 1));
    float e = lattice(c + ivec2(1, 1));

    vec2 u = f * f * (3.0 - 2.0 * f);
    return mix(mix(a, b, u.x), mix(d, e, u.x), u.y);
}

float fbm(vec2 p) {
    float value = 0.0;
    float amplitude = 0.5;
    float frequency = 1.0;
    for (int i = 0; i < uOctaves; i++) {
        value += amplitude * valueNoise(p * frequency);
        amplitude *= 0.5;
        frequency *= 2.0;
    }
    return value;
}

float terrainHeight(vec2 w) {
    float h = fbm(w * uNoiseScale) * uNoiseAmplitude;
    h += sin(w.x * uRippleFrequency) * cos(w.y * uRippleFrequency) * uRippleAmplitude;
    float slope = smoothstep(0.0, uMaxDist, length(w));
    return mix(h, uSeaFloor, slope);
}

void main() {
    vec4 world = uModel * vec4(aPos, 1.0);
    vec3 normal = aNormal;

    if (uDisplace) {
        const float eps = 0.05;
        world.y = terrainHeight(world.xz);
        float hL = terrainHeight(world.xz - vec2(eps, 0.0));
        float hR = terrainHeight(world.xz + vec2(eps, 0.0));
        float hD = terrainHeight(world.xz - vec2(0.0, eps));
        float hU = terrainHeight(world.xz + vec2(0.0, eps));
        normal = normalize(vec3(hL - hR, 2.0 * eps, hD - hU));
    }

    vNormal = normal;
    vWorldPos = world.xyz;
    vHeight = world.y;
    vUV = world.xz * 1.1;

    vec4 viewPos = uView * world;
    vFogDepth = -viewPos.z;
    gl_Position = uProjection * viewPos;
}
`

const terrainFragmentShader = `#version 410 core

in vec3  vNormal;
in vec3  vWorldPos;
in float vHeight;
in vec2  vUV;
in float vFogDepth;

uniform vec3  uCameraPos;
uniform vec3  uLightDirection;
uniform vec3  uFogColor;
uniform float uFogDensity;
uniform float uTime;
uniform bool  uWireframe;

out vec4 FragColor;

const vec3 sand = vec3(0.86, 0.74, 0.52);

void main() {
    if (uWireframe) {
        FragColor = vec4(0.1, 0.1, 0.1, 1.0);
        return;
    }

    // Fine grain in place of a sand texture; it drifts slowly with chunk time.
    float grain = fract(sin(dot(floor(vUV * 8.0), vec2(12.9898, 78.233)) + uTime * 0.01) * 43758.5453);
    vec3 base = sand * (0.94 + 0.06 * grain);

    float heightFactor = smoothstep(0.0, 1.0, vHeight / 2.0);
    vec3 color = mix(base, base * 0.9, heightFactor);

    vec3 n = normalize(vNormal);
    vec3 l = normalize(uLightDirection);
    float diffuse = max(0.0, dot(n, l));
    color *= diffuse * 0.8 + 0.5;

    vec3 viewDir = normalize(uCameraPos - vWorldPos);
    vec3 reflectDir = reflect(-l, n);
    float spec = pow(max(dot(viewDir, reflectDir), 0.0), 32.0);
    color += spec * 0.15;

    float fogFactor = 1.0 - exp(-uFogDensity * uFogDensity * vFogDepth * vFogDepth);
    color = mix(color, uFogColor, fogFactor);

    FragColor = vec4(color, 1.0);
}
`

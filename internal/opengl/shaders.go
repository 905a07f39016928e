package opengl

import "fmt"

// ── Geometry pass ─────────────────────────────────────────────────────────────

// geomVertSrc: world-space position, normal and TBN for the G-buffer writes.
const geomVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inTangent;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;
uniform mat3 normalMatrix;

out vec3 fragPos;
out vec2 fragUV;
out mat3 fragTBN;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragPos = world.xyz;
    fragUV  = inUV;

    vec3 N = normalize(normalMatrix * inNormal);
    vec3 T = normalMatrix * inTangent.xyz;
    T = length(T) > 0.0 ? normalize(T - N * dot(N, T)) : vec3(0.0);
    float w = inTangent.w < 0.0 ? -1.0 : 1.0;
    vec3 B = cross(N, T) * w;
    fragTBN = mat3(T, B, N);

    gl_Position = projection * view * world;
}
` + "\x00"

// geomFragSrc: writes position, normal and albedo+specular. Occlusion
// darkens albedo; specular comes from the specular/glossiness map when one
// is bound.
const geomFragSrc = `
#version 410 core
layout(location = 0) out vec3 gPosition;
layout(location = 1) out vec3 gNormal;
layout(location = 2) out vec4 gAlbedoSpec;

in vec3 fragPos;
in vec2 fragUV;
in mat3 fragTBN;

uniform sampler2D diffuseTexture;            // unit 0
uniform sampler2D specularGlossinessTexture; // unit 1
uniform sampler2D normalTexture;             // unit 2
uniform sampler2D occlusionTexture;          // unit 3
uniform sampler2D emissiveTexture;           // unit 4

uniform bool hasDiffuse;
uniform bool hasSpecGloss;
uniform bool hasNormal;
uniform bool hasOcclusion;
uniform bool hasEmissive;

void main() {
    gPosition = fragPos;

    vec3 N = normalize(fragTBN[2]);
    if (hasNormal && length(fragTBN[0]) > 0.0) {
        vec3 t = texture(normalTexture, fragUV).rgb * 2.0 - 1.0;
        N = normalize(fragTBN * t);
    }
    gNormal = N;

    vec4 albedo = hasDiffuse ? texture(diffuseTexture, fragUV) : vec4(0.8, 0.8, 0.8, 1.0);
    if (albedo.a < 0.1) {
        discard;
    }
    vec3 rgb = albedo.rgb;
    if (hasOcclusion) {
        rgb *= texture(occlusionTexture, fragUV).r;
    }
    if (hasEmissive) {
        rgb = max(rgb, texture(emissiveTexture, fragUV).rgb);
    }
    float spec = hasSpecGloss ? texture(specularGlossinessTexture, fragUV).r : 0.5;
    gAlbedoSpec = vec4(rgb, spec);
}
` + "\x00"

// ── Lighting pass ─────────────────────────────────────────────────────────────

// lightVertSrc: fullscreen triangle via gl_VertexID (no VBO needed).
const lightVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// lightFragTemplate is formatted with the light capacity of the uniform
// block. The cluster lookup must stay in step with cluster.Grid.ClusterAt.
const lightFragTemplate = `
#version 410 core
#define MAX_LIGHTS %d

in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D gPosition;   // unit 0
uniform sampler2D gNormal;     // unit 1
uniform sampler2D gAlbedoSpec; // unit 2
uniform isamplerBuffer clusterLights; // unit 3
uniform isamplerBuffer clusterCounts; // unit 4

layout(std140) uniform LightBlock {
    vec4 lightPosRadius[MAX_LIGHTS];      // xyz world position, w radius
    vec4 lightColorIntensity[MAX_LIGHTS]; // rgb colour, a intensity
};

uniform mat4  view;
uniform vec3  viewPos;
uniform ivec3 gridSize;
uniform float zNear;
uniform float zFar;
uniform vec2  screenSize;
uniform int   maxLightsPerCluster;
uniform vec3  ambient;
uniform vec3  background;
uniform float shininess;

void main() {
    vec3 normal = texture(gNormal, fragUV).rgb;
    if (dot(normal, normal) < 1e-6) {
        outColor = vec4(background, 1.0);
        return;
    }
    normal = normalize(normal);
    vec3 fragPos    = texture(gPosition, fragUV).rgb;
    vec4 albedoSpec = texture(gAlbedoSpec, fragUV);

    float depth = -(view * vec4(fragPos, 1.0)).z;
    int slice = int(floor(log(depth / zNear) / log(zFar / zNear) * float(gridSize.z)));
    ivec2 tile = ivec2(gl_FragCoord.xy / screenSize * vec2(gridSize.xy));
    ivec3 c = clamp(ivec3(tile, slice), ivec3(0), gridSize - 1);
    int cluster = c.x + gridSize.x * (c.y + gridSize.y * c.z);

    int count = texelFetch(clusterCounts, cluster).r;
    int base  = cluster * maxLightsPerCluster;

    vec3 viewDir = normalize(viewPos - fragPos);
    vec3 color = albedoSpec.rgb * ambient;
    for (int i = 0; i < count; ++i) {
        int li = texelFetch(clusterLights, base + i).r;
        if (li < 0) {
            break;
        }
        vec4 pr = lightPosRadius[li];
        vec4 ci = lightColorIntensity[li];

        vec3  toLight = pr.xyz - fragPos;
        float dist    = length(toLight);
        if (dist >= pr.w) {
            continue;
        }
        vec3 L = toLight / max(dist, 1e-4);
        float falloff = clamp(1.0 - (dist * dist) / (pr.w * pr.w), 0.0, 1.0);
        falloff *= falloff;

        float diff = max(dot(normal, L), 0.0);
        vec3  H    = normalize(L + viewDir);
        float spec = pow(max(dot(normal, H), 0.0), shininess) * albedoSpec.a;

        color += (albedoSpec.rgb * diff + vec3(spec)) * ci.rgb * ci.a * falloff;
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

func lightFragSrc(maxLights int) string {
	return fmt.Sprintf(lightFragTemplate, maxLights)
}

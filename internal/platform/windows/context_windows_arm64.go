package windows

// contextSize is sizeof(CONTEXT) on arm64.
const contextSize = 912

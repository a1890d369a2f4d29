package windows

// contextSize is sizeof(CONTEXT) on amd64.
const contextSize = 1232

package windows

// contextSize is sizeof(CONTEXT) on 386.
const contextSize = 716

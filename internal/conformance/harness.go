package conformance

// harness defines the helpers conformance tests call. It runs in every
// test realm before the test itself unless the test is flagged raw.
const harness = `
function Test262Error(message) {
    this.message = message || "";
}
Test262Error.prototype.name = "Test262Error";
Test262Error.prototype.toString = function () {
    return "Test262Error: " + this.message;
};

function $ERROR(message) {
    throw new Test262Error(message);
}

function $FAIL(message) {
    throw new Test262Error(message);
}

function $PRINT(message) {
    console.log(message);
}

function runTestCase(testcase) {
    if (testcase() !== true) {
        $ERROR("Test case returned non-true value!");
    }
}

function fnGlobalObject() {
    return (function () { return this; })();
}

function fnExists(f) {
    return typeof f === "function";
}
`

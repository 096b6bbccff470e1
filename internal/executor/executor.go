package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	language "github.com/hanpama/membergraph/internal/language"
	schema "github.com/hanpama/membergraph/internal/schema"
)

type Path []PathElement

type PathElement any

type NodeID uint64

// executionState holds the state during query execution
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	asyncTaskGroup []asyncTask
	errors         []GraphQLError
	// simple incremental id generator
	nextID uint64
	// prefixes of paths that have been nullified (tombstoned)
	nullifiedPrefix map[string]struct{}
	// nullable records, per visited response path, whether null may be
	// written there.
	nullable map[string]bool
	// dataNull is set when a non-null violation reached the root.
	dataNull bool
}

// asyncTask represents a pending async field resolution
type asyncTask struct {
	ID           NodeID
	Task         AsyncResolveTask
	ResponsePath Path
	FieldType    *schema.TypeRef
	Fields       []*language.Field
}

type asyncPending struct{}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// Schema returns the schema the executor was built with.
func (e *Executor) Schema() *schema.Schema { return e.schema }

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := GetOperation(document, operationName)
	if operation == nil {
		if operationName != "" {
			return errorResult(fmt.Sprintf("Unknown operation named %q.", operationName))
		}
		return errorResult("Must provide operation name if query contains multiple operations.")
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return errorResult(err.Error())
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return errorResult(fmt.Sprintf("unsupported operation type: %s", operation.Operation))
	}

	if rootType == nil {
		return errorResult(fmt.Sprintf("root type not found for %s operation", operation.Operation))
	}

	state := &executionState{
		runtime:         e.runtime,
		schema:          e.schema,
		document:        document,
		variableValues:  coercedVariableValues,
		context:         ctx,
		asyncTaskGroup:  []asyncTask{},
		errors:          []GraphQLError{},
		nextID:          1,
		nullifiedPrefix: make(map[string]struct{}),
		nullable:        make(map[string]bool),
	}

	var responseRoot map[string]any
	if operation.Operation == language.Mutation {
		responseRoot = executeSerially(state, rootType, operation.SelectionSet, initialValue)
	} else {
		responseRoot = executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{})
		state.drain(responseRoot)
	}

	if state.dataNull {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: responseRoot, Errors: state.errors}
}

func errorResult(message string) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{Message: message}}}
}

// drain runs the depth-wise batch loop until nothing is queued.
func (s *executionState) drain(responseRoot map[string]any) {
	for len(s.asyncTaskGroup) > 0 && !s.dataNull {
		filtered, results := flushAsyncTasks(s)
		for i, r := range results {
			completeAsyncField(s, filtered[i], r, responseRoot)
		}
	}
}

// executeSelectionSet executes a selection set without flushing. It returns
// nil when a non-null field of the object resolved to null.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	resultMap := make(map[string]any)
	for _, field := range collectFields(state, selectionSet) {
		if !executeGroupedField(state, objectType, field, objectValue, path, resultMap) {
			return nil
		}
	}
	return resultMap
}

// executeSerially completes each root field, sub-selections included, before
// the next one starts.
func executeSerially(state *executionState, rootType *schema.Type, selectionSet language.SelectionSet, rootValue any) map[string]any {
	resultMap := make(map[string]any)
	for _, field := range collectFields(state, selectionSet) {
		if !executeGroupedField(state, rootType, field, rootValue, Path{}, resultMap) {
			return nil
		}
		state.drain(resultMap)
		if state.dataNull {
			return nil
		}
	}
	return resultMap
}

// executeGroupedField writes one response entry into resultMap. It reports
// false when a non-null field resolved to null in place.
func executeGroupedField(state *executionState, objectType *schema.Type, field collectedField, objectValue any, path Path, resultMap map[string]any) bool {
	responseName := field.ResponseName
	fields := field.Fields
	fieldPath := appendPath(path, responseName)

	if fields[0].Name == "__typename" {
		resultMap[responseName] = objectType.Name
		return true
	}

	fieldDef := objectType.Field(fields[0].Name)
	if fieldDef == nil {
		state.addError(fmt.Sprintf("Cannot query field %q on type %q.", fields[0].Name, objectType.Name), fieldPath, fields)
		return true
	}
	state.nullable[pathKey(fieldPath)] = !schema.IsNonNull(fieldDef.Type)

	fieldResult := executeField(state, objectType, fieldDef, objectValue, fields, fieldPath)
	if _, pending := fieldResult.(asyncPending); pending {
		resultMap[responseName] = fieldResult
		return true
	}

	if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
		if len(path) == 0 {
			state.dataNull = true
		} else {
			state.markNullifiedPrefix(path)
		}
		return false
	}

	// typed nil becomes interface nil
	if isNullish(fieldResult) {
		resultMap[responseName] = nil
	} else {
		resultMap[responseName] = fieldResult
	}
	return true
}

// executeField resolves a sync field in place or queues an async one and
// returns asyncPending.
func executeField(state *executionState, objectType *schema.Type, fieldDef *schema.Field, objectValue any, fields []*language.Field, path Path) any {
	argumentValues, err := coerceArgumentValues(state.schema, fieldDef, fields[0].Arguments, state.variableValues)
	if err != nil {
		state.addError(err.Error(), path, fields)
		return nil
	}

	if !fieldDef.Async {
		value, err := state.runtime.ResolveSync(state.context, objectType.Name, fieldDef.Name, objectValue, argumentValues)
		if err != nil {
			state.addFieldError(err, path, fields)
			return nil
		}
		return completeValue(state, fieldDef.Type, fields, value, path)
	}

	id := NodeID(state.nextID)
	state.nextID++
	state.asyncTaskGroup = append(state.asyncTaskGroup, asyncTask{
		ID: id,
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      fieldDef.Name,
			Source:     objectValue,
			Args:       argumentValues,
			Fields:     fields,
			Path:       path,
		},
		ResponsePath: path,
		FieldType:    fieldDef.Type,
		Fields:       fields,
	})
	return asyncPending{}
}

// flushAsyncTasks flushes tasks and returns results (filtered by tombstones)
func flushAsyncTasks(state *executionState) ([]asyncTask, []AsyncResolveResult) {
	// Filter out tasks under nullified prefixes
	filtered := make([]asyncTask, 0, len(state.asyncTaskGroup))
	for _, at := range state.asyncTaskGroup {
		if state.hasNullifiedPrefix(at.ResponsePath) {
			continue
		}
		filtered = append(filtered, at)
	}

	tasks := make([]AsyncResolveTask, len(filtered))
	for i, at := range filtered {
		tasks[i] = at.Task
	}

	// Clear group before executing
	state.asyncTaskGroup = nil
	if len(tasks) == 0 {
		return nil, nil
	}

	results := state.runtime.BatchResolveAsync(state.context, tasks)
	if len(results) != len(tasks) {
		err := fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))
		results = make([]AsyncResolveResult, len(tasks))
		for i := range results {
			results[i].Error = err
		}
	}
	return filtered, results
}

// completeAsyncField completes a single async result, with non-null propagation and pruning
func completeAsyncField(state *executionState, at asyncTask, res AsyncResolveResult, responseRoot map[string]any) {
	path := at.ResponsePath
	// If this path is already nullified by an ancestor, ignore
	if state.dataNull || state.hasNullifiedPrefix(path) {
		return
	}

	var completed any
	if res.Error != nil {
		state.addFieldError(res.Error, path, at.Fields)
	} else {
		completed = completeValue(state, at.FieldType, at.Fields, res.Value, path)
	}

	if schema.IsNonNull(at.FieldType) && isNullish(completed) {
		state.propagateNull(responseRoot, path)
		return
	}

	// Normal write; coerce typed-nil to interface nil
	if isNullish(completed) {
		setValueAtPath(responseRoot, path, nil)
	} else {
		setValueAtPath(responseRoot, path, completed)
	}
}

// propagateNull writes null at the nearest nullable ancestor of path and
// drops everything queued below it. With no nullable ancestor the whole
// response data becomes null.
func (s *executionState) propagateNull(responseRoot map[string]any, path Path) {
	for i := len(path) - 1; i > 0; i-- {
		prefix := path[:i]
		if s.nullable[pathKey(prefix)] {
			setValueAtPath(responseRoot, prefix, nil)
			s.markNullifiedPrefix(prefix)
			return
		}
	}
	s.dataNull = true
}

// completeValue completes a value
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s.", pathToString(path)), path, fields)
			}
			return nil
		}
		completed := completeValue(state, schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}
	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", namedType), path, fields)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := state.runtime.SerializeLeafValue(state.context, namedType, result)
		if err != nil {
			state.addFieldError(err, path, fields)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		sub := executeSelectionSet(state, typeObj, mergeSelectionSets(fields), result, path)
		if sub == nil {
			return nil
		}
		return sub
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path, fields)
		return nil
	}
}

// completeListValue completes a list value
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path, fields)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	itemNullable := !schema.IsNonNull(inner)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		state.nullable[pathKey(p)] = itemNullable
		v := completeValue(state, inner, fields, item, p)
		if !itemNullable && isNullish(v) {
			// Propagate null to the list field; error already recorded by inner completion
			state.markNullifiedPrefix(path)
			return nil
		}
		completed[i] = v
	}
	return completed
}

func pathToString(path Path) string {
	var b strings.Builder
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		}
	}
	return b.String()
}

func pathKey(path Path) string { return pathToString(path) }

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// Prefix tombstone helpers
func (s *executionState) markNullifiedPrefix(p Path) {
	key := pathKey(p)
	if key != "" {
		s.nullifiedPrefix[key] = struct{}{}
	}
}

func (s *executionState) hasNullifiedPrefix(p Path) bool {
	if len(s.nullifiedPrefix) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := s.nullifiedPrefix[pathKey(p[:i])]; ok {
			return true
		}
	}
	return false
}

// GetOperation selects the operation to run: the named one, or the only one
// when name is empty.
func GetOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(operationName)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}

func (s *executionState) addError(message string, path Path, fields []*language.Field) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path, Locations: locations(fields)})
}

// addFieldError records err, carrying over extensions from errors that
// expose them.
func (s *executionState) addFieldError(err error, path Path, fields []*language.Field) {
	gerr := GraphQLError{Message: err.Error(), Path: path, Locations: locations(fields)}
	var ext interface{ Extensions() map[string]any }
	if errors.As(err, &ext) {
		gerr.Extensions = ext.Extensions()
	}
	s.errors = append(s.errors, gerr)
}

func locations(fields []*language.Field) []Location {
	if len(fields) == 0 || fields[0].Position == nil {
		return nil
	}
	return []Location{{Line: fields[0].Position.Line, Column: fields[0].Position.Column}}
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (s *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range s.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// Helper function to set value at a specific path in response tree
func setValueAtPath(responseRoot map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	current := any(responseRoot)
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return
			}
			current = m[e]
		case int:
			slice, ok := current.([]any)
			if !ok || e >= len(slice) {
				return
			}
			current = slice[e]
		}
	}
	switch fe := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(map[string]any); ok {
			m[fe] = value
		}
	case int:
		if slice, ok := current.([]any); ok && fe < len(slice) {
			slice[fe] = value
		}
	}
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
